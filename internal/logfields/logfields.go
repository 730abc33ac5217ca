package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPage       = "page"
	KeySource     = "source"
	KeyLink       = "link"
	KeyAnchor     = "anchor"
	KeyPolicy     = "policy"
	KeyRule       = "rule"
	KeyPath       = "path"
	KeyError      = "error"
	KeyTrigger    = "trigger"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Page(p string) slog.Attr         { return slog.String(KeyPage, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Link(l string) slog.Attr         { return slog.String(KeyLink, l) }
func Anchor(a string) slog.Attr       { return slog.String(KeyAnchor, a) }
func Policy(p string) slog.Attr       { return slog.String(KeyPolicy, p) }
func Rule(r string) slog.Attr         { return slog.String(KeyRule, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Trigger(t string) slog.Attr      { return slog.String(KeyTrigger, t) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr   { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr   { return slog.String(KeyRemoteAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
