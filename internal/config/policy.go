package config

import (
	"fmt"
	"strings"
)

// Policy is the reaction to a reportable problem during a build.
type Policy string

const (
	PolicyThrow  Policy = "throw"
	PolicyWarn   Policy = "warn"
	PolicyLog    Policy = "log"
	PolicyIgnore Policy = "ignore"
)

// ParsePolicy normalizes a policy string. Empty input yields an empty policy.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case "", PolicyThrow, PolicyWarn, PolicyLog, PolicyIgnore:
		return p, nil
	default:
		return "", fmt.Errorf("invalid policy %q (want throw, warn, log or ignore)", s)
	}
}

// Fails reports whether a finding under this policy must abort the build.
func (p Policy) Fails() bool { return p == PolicyThrow }

func (p Policy) valid() bool {
	_, err := ParsePolicy(string(p))
	return err == nil && p != ""
}
