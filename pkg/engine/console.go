package engine

import "strings"

// DefaultTokenEndpoint is the route the client fetches its CSRF token from
const DefaultTokenEndpoint = "/api/csrf-token"

// AnalyzeConsoleLog scans browser console output for the CSRF client trace.
// Every marker found is recorded as a success, then the evidence is combined
// into issues and warnings. Any text, including empty text, is valid input.
func (s *Session) AnalyzeConsoleLog(text string) EvidenceFlags {
	normalized := normalize(text)
	flags := make(EvidenceFlags, len(ConsoleMarkers))

	var found []Finding
	for _, m := range ConsoleMarkers {
		hit := strings.Contains(normalized, normalize(m.Text))
		flags[m.Condition] = hit
		if hit {
			found = append(found, newFinding(SeveritySuccess, "Found: %s", m.Text))
		}
	}

	if !flags[TokenObtained] && !flags[TokenError] {
		found = append(found, newFinding(SeverityIssue, "CSRF token was never obtained (no success or error trace)"))
	} else if flags[TokenError] {
		found = append(found, newFinding(SeverityIssue, "Error obtaining CSRF token - check the %s endpoint", DefaultTokenEndpoint))
	}

	if flags[TokenEmpty] {
		found = append(found, newFinding(SeverityIssue, "Token is EMPTY when sent!"))
	}

	if !flags[CredentialsSet] {
		found = append(found, newFinding(SeverityWarning, "Credentials may not be sent correctly"))
	}

	for _, outcome := range statusOutcomes {
		if flags[outcome.condition] {
			found = append(found, outcome.finding)
			break
		}
	}

	s.record(found)
	return flags
}
