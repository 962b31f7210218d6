package engine

import (
	"encoding/json"
	"strings"
)

const (
	ruleWide   = "============================================================"
	ruleNarrow = "------------------------------------------------------------"
)

// Report is the synthesized verdict of a session
type Report struct {
	Successes       []Finding `json:"successes"`
	Warnings        []Finding `json:"warnings"`
	Issues          []Finding `json:"issues"`
	Recommendations []string  `json:"recommendations"`
}

// Report builds the verdict from the accumulated findings without touching them
func (s *Session) Report() Report {
	s.mu.RLock()
	r := Report{
		Successes: cloneFindings(s.successes),
		Warnings:  cloneFindings(s.warnings),
		Issues:    cloneFindings(s.issues),
	}
	remediation := s.remediation
	s.mu.RUnlock()

	r.Recommendations = remediation.Recommend(r.Issues)
	return r
}

// GenerateReport returns the text report for the session
func (s *Session) GenerateReport() string {
	return s.Report().String()
}

// String renders the report as text. Empty finding sections are omitted;
// the recommendations section is always present.
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("\n" + ruleWide + "\n")
	sb.WriteString("📋 DIAGNOSTIC SUMMARY\n")
	sb.WriteString(ruleWide + "\n")

	writeSection(&sb, "✅ WHAT IS OK:", r.Successes)
	writeSection(&sb, "⚠️ WARNINGS:", r.Warnings)
	writeSection(&sb, "❌ PROBLEMS FOUND:", r.Issues)

	sb.WriteString("\n" + ruleNarrow + "\n")
	sb.WriteString("🎯 RECOMMENDATIONS:\n")
	for _, rec := range r.Recommendations {
		sb.WriteString("   " + rec + "\n")
	}

	sb.WriteString("\n" + ruleWide + "\n")
	return sb.String()
}

func writeSection(sb *strings.Builder, title string, findings []Finding) {
	if len(findings) == 0 {
		return
	}
	sb.WriteString("\n" + title + "\n")
	for _, f := range findings {
		sb.WriteString("   " + f.String() + "\n")
	}
}

// JSON renders the report as indented JSON
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// HasIssues reports whether any ISSUE finding was recorded
func (r Report) HasIssues() bool {
	return len(r.Issues) > 0
}
