package wrappers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/user/csrf-diag/pkg/engine"
	"github.com/user/csrf-diag/pkg/logger"
)

// analyzeFunc is one of the session's analyzer methods
type analyzeFunc func(s *engine.Session, text string) engine.EvidenceFlags

// AnalyzerWrapper exposes one session analyzer as an agent tool
type AnalyzerWrapper struct {
	Session *engine.Session

	name        string
	description string
	input       string
	analyze     analyzeFunc
}

// NewConsoleLogWrapper wraps Session.AnalyzeConsoleLog
func NewConsoleLogWrapper(s *engine.Session) *AnalyzerWrapper {
	return &AnalyzerWrapper{
		Session:     s,
		name:        "AnalyzeConsoleLog",
		description: "Scans browser console output for the CSRF client trace (token fetch, token attached to tRPC calls, credentials mode, response status).",
		input:       "Raw browser console output, pasted as-is.",
		analyze:     (*engine.Session).AnalyzeConsoleLog,
	}
}

// NewHeadersWrapper wraps Session.AnalyzeHeaders
func NewHeadersWrapper(s *engine.Session) *AnalyzerWrapper {
	return &AnalyzerWrapper{
		Session:     s,
		name:        "AnalyzeHeaders",
		description: "Checks request headers from the browser network tab for X-CSRF-Token, Content-Type and Cookie.",
		input:       "Raw request headers, one per line.",
		analyze:     (*engine.Session).AnalyzeHeaders,
	}
}

// NewResponseWrapper wraps Session.AnalyzeResponse
func NewResponseWrapper(s *engine.Session) *AnalyzerWrapper {
	return &AnalyzerWrapper{
		Session:     s,
		name:        "AnalyzeResponse",
		description: "Inspects a tRPC JSON response body ({ok, error: {message}, result}) and classifies the error.",
		input:       "The response body JSON.",
		analyze:     (*engine.Session).AnalyzeResponse,
	}
}

func (a *AnalyzerWrapper) Name() string {
	return a.name
}

func (a *AnalyzerWrapper) Description() string {
	return a.description
}

func (a *AnalyzerWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{
				"type":        "string",
				"description": a.input,
			},
		},
		"required": []string{"text"},
	}
}

func (a *AnalyzerWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if a.Session == nil {
		return "Error: diagnostic session not initialized.", nil
	}

	text, ok := textArg(args)
	if !ok {
		return "Error: text argument is required.", nil
	}

	if progress != nil {
		progress(fmt.Sprintf("Running %s on %d bytes...", a.name, len(text)))
	}

	before := a.Session.Counts()
	flags := a.analyze(a.Session, text)
	after := a.Session.Counts()
	logger.Debugf("%s flags: %v", a.name, flags)

	return fmt.Sprintf("%s complete. Evidence: %s. Added %d ok, %d warnings, %d issues.",
		a.name, formatFlags(flags),
		after[engine.SeveritySuccess]-before[engine.SeveritySuccess],
		after[engine.SeverityWarning]-before[engine.SeverityWarning],
		after[engine.SeverityIssue]-before[engine.SeverityIssue],
	), nil
}

// textArg accepts the declared "text" argument or the single "args" string
// some models send instead.
func textArg(args map[string]interface{}) (string, bool) {
	if t, ok := args["text"].(string); ok {
		return t, true
	}
	if t, ok := args["args"].(string); ok {
		return t, true
	}
	return "", false
}

func formatFlags(flags engine.EvidenceFlags) string {
	if len(flags) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(flags))
	for k := range flags {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%t", k, flags[engine.Condition(k)])
	}
	return strings.Join(parts, ", ")
}
