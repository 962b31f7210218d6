package engine

import (
	"fmt"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Session holds the findings accumulated by the analyzers of one diagnostic run.
// Findings are append-only: the three sequences never shrink and entries are never rewritten.
type Session struct {
	mu          sync.RWMutex
	successes   []Finding
	warnings    []Finding
	issues      []Finding
	remediation *RemediationEngine
}

// Option configures a Session
type Option func(*Session)

// WithRemediation sets the rule catalog used to build recommendations
func WithRemediation(r *RemediationEngine) Option {
	return func(s *Session) {
		if r != nil {
			s.remediation = r
		}
	}
}

// NewSession creates an empty session
func NewSession(opts ...Option) *Session {
	s := &Session{
		successes:   make([]Finding, 0),
		warnings:    make([]Finding, 0),
		issues:      make([]Finding, 0),
		remediation: NewRemediationEngine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record appends the findings of one analyzer call under a single lock so
// that a call is never interleaved with another.
func (s *Session) record(findings []Finding) {
	if len(findings) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range findings {
		switch f.Severity {
		case SeveritySuccess:
			s.successes = append(s.successes, f)
		case SeverityWarning:
			s.warnings = append(s.warnings, f)
		default:
			f.Severity = SeverityIssue
			s.issues = append(s.issues, f)
		}
	}
}

// Successes returns a copy of the SUCCESS findings in append order
func (s *Session) Successes() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFindings(s.successes)
}

// Warnings returns a copy of the WARNING findings in append order
func (s *Session) Warnings() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFindings(s.warnings)
}

// Issues returns a copy of the ISSUE findings in append order
func (s *Session) Issues() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneFindings(s.issues)
}

// Findings returns every finding grouped by severity: successes, warnings, then issues.
func (s *Session) Findings() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Finding, 0, len(s.successes)+len(s.warnings)+len(s.issues))
	all = append(all, s.successes...)
	all = append(all, s.warnings...)
	all = append(all, s.issues...)
	return all
}

// Counts returns the number of findings per severity
func (s *Session) Counts() map[Severity]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[Severity]int{
		SeveritySuccess: len(s.successes),
		SeverityWarning: len(s.warnings),
		SeverityIssue:   len(s.issues),
	}
}

// Summary returns a one-line count of findings
func (s *Session) Summary() string {
	c := s.Counts()
	return fmt.Sprintf("%d ok, %d warnings, %d issues", c[SeveritySuccess], c[SeverityWarning], c[SeverityIssue])
}

func cloneFindings(in []Finding) []Finding {
	out := make([]Finding, len(in))
	copy(out, in)
	return out
}

func newFinding(sev Severity, format string, args ...interface{}) Finding {
	return Finding{Severity: sev, Message: fmt.Sprintf(format, args...)}
}

// normalize lower-cases text for case-insensitive marker matching.
// A Caser keeps state, so one is built per call.
func normalize(text string) string {
	return cases.Lower(language.Und).String(text)
}
