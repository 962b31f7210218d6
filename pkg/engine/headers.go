package engine

import "strings"

// AnalyzeHeaders checks raw request header text for the anti-forgery header,
// the content type and the session cookie.
func (s *Session) AnalyzeHeaders(text string) EvidenceFlags {
	normalized := normalize(text)
	flags := make(EvidenceFlags, len(headerSignals))

	var found []Finding
	for _, sig := range headerSignals {
		present := strings.Contains(normalized, sig.name)
		flags[sig.condition] = present
		switch {
		case present:
			found = append(found, sig.present)
		case sig.absent != nil:
			found = append(found, *sig.absent)
		}
	}

	s.record(found)
	return flags
}
