package wrappers

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/csrf-diag/pkg/engine"
)

const DefaultSnapshotPath = ".csrf-diag-snapshot.json"

// SaveSnapshotWrapper implements the Tool interface for saving the session findings
type SaveSnapshotWrapper struct {
	Session *engine.Session
}

func (s *SaveSnapshotWrapper) Name() string {
	return "SaveSnapshot"
}

func (s *SaveSnapshotWrapper) Description() string {
	return "Saves the current diagnostic findings to a snapshot file so a later run can be compared against it."
}

func (s *SaveSnapshotWrapper) Schema() map[string]interface{} {
	return filenameSchema("Optional filename for the snapshot (default: " + DefaultSnapshotPath + ")")
}

func (s *SaveSnapshotWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if s.Session == nil {
		return "Error: diagnostic session not initialized.", nil
	}

	filename := filenameArg(args)
	if err := s.Session.SaveSnapshot(filename); err != nil {
		return fmt.Sprintf("Error saving snapshot: %v", err), nil
	}
	return fmt.Sprintf("Saved %d findings to snapshot '%s'.", len(s.Session.Findings()), filename), nil
}

// DiffSnapshotWrapper implements the Tool interface for comparing the session with a baseline
type DiffSnapshotWrapper struct {
	Session *engine.Session
}

func (d *DiffSnapshotWrapper) Name() string {
	return "CompareWithBaseline"
}

func (d *DiffSnapshotWrapper) Description() string {
	return "Compares the current findings against a saved snapshot and lists New, Resolved and Unchanged findings."
}

func (d *DiffSnapshotWrapper) Schema() map[string]interface{} {
	return filenameSchema("Optional filename of the baseline snapshot (default: " + DefaultSnapshotPath + ")")
}

func (d *DiffSnapshotWrapper) Execute(ctx context.Context, args map[string]interface{}, progress func(string)) (string, error) {
	if d.Session == nil {
		return "Error: diagnostic session not initialized.", nil
	}

	filename := filenameArg(args)
	baseline := engine.NewSession()
	if err := baseline.LoadSnapshot(filename); err != nil {
		return fmt.Sprintf("Error loading baseline snapshot '%s': %v. Save a snapshot first.", filename, err), nil
	}

	return FormatDiff(filename, d.Session.CompareSnapshot(baseline)), nil
}

// FormatDiff renders a snapshot comparison
func FormatDiff(baselineName string, diff engine.SnapshotDiff) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Snapshot Comparison (vs %s):\n", baselineName))
	sb.WriteString("--------------------------------------------------\n")
	writeDiffGroup(&sb, "NEW", "+", diff.New)
	writeDiffGroup(&sb, "RESOLVED", "-", diff.Resolved)
	writeDiffGroup(&sb, "UNCHANGED", "=", diff.Unchanged)
	return sb.String()
}

func writeDiffGroup(sb *strings.Builder, title, mark string, findings []engine.Finding) {
	sb.WriteString(fmt.Sprintf("%s: %d\n", title, len(findings)))
	for _, f := range findings {
		sb.WriteString(fmt.Sprintf("  [%s] [%s] %s\n", mark, f.Severity, f.Message))
	}
	sb.WriteString("\n")
}

func filenameSchema(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"filename": map[string]interface{}{
				"type":        "string",
				"description": desc,
			},
		},
	}
}

func filenameArg(args map[string]interface{}) string {
	if val, ok := args["filename"].(string); ok && val != "" {
		return val
	}
	return DefaultSnapshotPath
}
