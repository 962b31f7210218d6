package wrappers

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/csrf-diag/pkg/engine"
)

// RemediationWrapper implements the Tool interface for looking up remediation steps
type RemediationWrapper struct {
	Engine *engine.RemediationEngine
}

func (r *RemediationWrapper) Name() string {
	return "LookupRemediation"
}

func (r *RemediationWrapper) Description() string {
	return "Lists the remediation rules, or returns the steps recommended for a problem description (e.g. 'Response 403 - token rejected')."
}

func (r *RemediationWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"problem": map[string]interface{}{
				"type":        "string",
				"description": "Problem text to match against rule keywords. If omitted, lists the rules.",
			},
		},
	}
}

func (r *RemediationWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if r.Engine == nil {
		return "Error: remediation engine not initialized.", nil
	}

	problem, _ := args["problem"].(string)
	if strings.TrimSpace(problem) == "" {
		rules := r.Engine.ListRules()
		if len(rules) == 0 {
			return "No remediation rules loaded.", nil
		}
		return fmt.Sprintf("Remediation rules (keyword match, evaluated in order):\n- %s", strings.Join(rules, "\n- ")), nil
	}

	steps := r.Engine.Recommend([]engine.Finding{{Severity: engine.SeverityIssue, Message: problem}})
	if len(steps) == 0 {
		return fmt.Sprintf("No remediation rule matches %q.", problem), nil
	}
	return strings.Join(steps, "\n"), nil
}
