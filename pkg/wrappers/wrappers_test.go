package wrappers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/csrf-diag/pkg/adk"
	"github.com/user/csrf-diag/pkg/engine"
)

// all wrappers must satisfy the agent's tool interface
var (
	_ adk.Tool = (*AnalyzerWrapper)(nil)
	_ adk.Tool = (*ReportWrapper)(nil)
	_ adk.Tool = (*SaveSnapshotWrapper)(nil)
	_ adk.Tool = (*DiffSnapshotWrapper)(nil)
	_ adk.Tool = (*RemediationWrapper)(nil)
)

func TestAnalyzerWrappers_ShareSession(t *testing.T) {
	ctx := context.Background()
	s := engine.NewSession()

	var progress []string
	onProgress := func(msg string) { progress = append(progress, msg) }

	out, err := NewHeadersWrapper(s).Execute(ctx, map[string]interface{}{"text": "Accept: */*"}, onProgress)
	require.NoError(t, err)
	assert.Equal(t, "AnalyzeHeaders complete. Evidence: content_type=false, cookies=false, csrf_header=false. Added 0 ok, 1 warnings, 1 issues.", out)

	out, err = NewResponseWrapper(s).Execute(ctx, map[string]interface{}{"args": `{"ok": true}`}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "success=true")

	_, err = NewConsoleLogWrapper(s).Execute(ctx, map[string]interface{}{"text": ""}, nil)
	require.NoError(t, err)

	assert.Len(t, progress, 1)
	assert.Equal(t, "1 ok, 2 warnings, 2 issues", s.Summary())

	report, err := (&ReportWrapper{Session: s}).Execute(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, s.GenerateReport(), report)

	jsonReport, err := (&ReportWrapper{Session: s}).Execute(ctx, map[string]interface{}{"format": "json"}, nil)
	require.NoError(t, err)
	assert.Contains(t, jsonReport, `"recommendations"`)
}

func TestAnalyzerWrapper_MissingText(t *testing.T) {
	s := engine.NewSession()
	out, err := NewConsoleLogWrapper(s).Execute(context.Background(), map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Error: text argument is required.", out)
	assert.Empty(t, s.Findings())

	out, _ = (&AnalyzerWrapper{}).Execute(context.Background(), nil, nil)
	assert.Contains(t, out, "not initialized")
}

func TestAnalyzerWrapper_Schema(t *testing.T) {
	schema := NewResponseWrapper(nil).Schema()
	assert.Equal(t, []string{"text"}, schema["required"])
}

func TestSnapshotWrappers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "base.json")
	args := map[string]interface{}{"filename": path}

	before := engine.NewSession()
	before.AnalyzeHeaders("Accept: */*")
	out, err := (&SaveSnapshotWrapper{Session: before}).Execute(ctx, args, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 findings")

	after := engine.NewSession()
	after.AnalyzeHeaders("X-CSRF-Token: abc")
	out, err = (&DiffSnapshotWrapper{Session: after}).Execute(ctx, args, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "NEW: 1\n  [+] [success] Header X-CSRF-Token present")
	assert.Contains(t, out, "RESOLVED: 1\n  [-] [issue] Header X-CSRF-Token NOT found")
	assert.Contains(t, out, "UNCHANGED: 1\n  [=] [warning] Cookies do not appear in the headers")

	out, err = (&DiffSnapshotWrapper{Session: after}).Execute(ctx, map[string]interface{}{"filename": path + ".missing"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Error loading baseline snapshot")
}

func TestRemediationWrapper(t *testing.T) {
	ctx := context.Background()
	w := &RemediationWrapper{Engine: engine.NewRemediationEngine()}

	out, err := w.Execute(ctx, map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "- forbidden: 403 (the server rejected the token with 403)")

	out, err = w.Execute(ctx, map[string]interface{}{"problem": "Response 403"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "1. The CSRF token is being rejected\n2. Check that the token is still valid for this session\n3. Inspect the middleware logs: server/_core/csrf.ts", out)

	out, err = w.Execute(ctx, map[string]interface{}{"problem": "disk full"}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No remediation rule matches")
}
