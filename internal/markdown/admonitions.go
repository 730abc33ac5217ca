package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
)

var admonitionOpen = regexp.MustCompile(`^:::(note|tip|info|warning|danger|caution)(?:\[(.*)\]|\s+(.*))?\s*$`)

// expandAdmonitions rewrites ":::type title" fenced containers into HTML
// blocks wrapping markdown, so the content between the fences is still parsed.
// Fenced code blocks are left untouched.
func expandAdmonitions(body []byte) []byte {
	if !bytes.Contains(body, []byte(":::")) {
		return body
	}
	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	depth := 0
	inFence := ""
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if inFence != "" {
			if strings.HasPrefix(trimmed, inFence) {
				inFence = ""
			}
			out.WriteString(line + "\n")
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = trimmed[:3]
			out.WriteString(line + "\n")
			continue
		}

		if m := admonitionOpen.FindStringSubmatch(trimmed); m != nil {
			kind := m[1]
			title := strings.TrimSpace(m[2] + m[3])
			if title == "" {
				title = kind
			}
			fmt.Fprintf(&out, "<div class=\"admonition admonition-%s\">\n<div class=\"admonition-heading\">%s</div>\n<div class=\"admonition-content\">\n\n",
				kind, html.EscapeString(title))
			depth++
			continue
		}
		if trimmed == ":::" && depth > 0 {
			out.WriteString("\n</div>\n</div>\n")
			depth--
			continue
		}
		out.WriteString(line + "\n")
	}
	for ; depth > 0; depth-- {
		out.WriteString("\n</div>\n</div>\n")
	}
	return out.Bytes()
}
