package wrappers

import (
	"context"
	"fmt"

	"github.com/user/csrf-diag/pkg/engine"
)

// ReportWrapper implements the Tool interface for rendering the session report
type ReportWrapper struct {
	Session *engine.Session
}

func (r *ReportWrapper) Name() string {
	return "GenerateReport"
}

func (r *ReportWrapper) Description() string {
	return "Returns the diagnostic report for everything analyzed so far: what is OK, warnings, problems found and recommended next steps."
}

func (r *ReportWrapper) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Output format: 'text' (default) or 'json'.",
			},
		},
	}
}

func (r *ReportWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if r.Session == nil {
		return "Error: diagnostic session not initialized.", nil
	}

	report := r.Session.Report()
	if format, _ := args["format"].(string); format == "json" {
		data, err := report.JSON()
		if err != nil {
			return fmt.Sprintf("Error encoding report: %v", err), nil
		}
		return string(data), nil
	}
	return report.String(), nil
}
