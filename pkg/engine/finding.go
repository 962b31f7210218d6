package engine

import (
	"fmt"
	"strings"
)

// Severity classifies a single diagnostic observation
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityIssue   Severity = "issue"
)

func (s Severity) String() string {
	return string(s)
}

// Marker returns the prefix used when rendering a finding of this severity
func (s Severity) Marker() string {
	switch s {
	case SeveritySuccess:
		return "✅"
	case SeverityWarning:
		return "⚠️"
	case SeverityIssue:
		return "❌"
	default:
		return "•"
	}
}

// ParseSeverity parses a severity name case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "success", "ok":
		return SeveritySuccess, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "issue", "error":
		return SeverityIssue, nil
	default:
		return "", fmt.Errorf("invalid severity: %s", s)
	}
}

// Finding represents one classified observation from any analyzer
type Finding struct {
	Severity Severity `json:"severity" msgpack:"severity"`
	Message  string   `json:"message" msgpack:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s %s", f.Severity.Marker(), f.Message)
}
