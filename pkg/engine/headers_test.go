package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHeaders_AllPresent(t *testing.T) {
	s := NewSession()
	flags := s.AnalyzeHeaders(`POST /api/trpc/auth.login HTTP/1.1
Content-Type: application/json
X-CSRF-Token: 3f9a0c
Cookie: sessionId=abc123`)

	assert.Equal(t, EvidenceFlags{CSRFHeader: true, ContentType: true, Cookies: true}, flags)
	assert.Len(t, s.Successes(), 3)
	assert.Empty(t, s.Warnings())
	assert.Empty(t, s.Issues())
}

func TestAnalyzeHeaders_NonePresent(t *testing.T) {
	s := NewSession()
	flags := s.AnalyzeHeaders("Accept: */*\nUser-Agent: curl/8.0")

	assert.False(t, flags.Has(CSRFHeader))
	assert.False(t, flags.Has(ContentType))
	assert.False(t, flags.Has(Cookies))

	assert.Empty(t, s.Successes(), "missing content-type is not reported")

	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "Header X-CSRF-Token NOT found", issues[0].Message)

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Cookies do not appear in the headers", warnings[0].Message)
}

func TestAnalyzeHeaders_MissingCSRFIsAlwaysIssue(t *testing.T) {
	s := NewSession()
	s.AnalyzeHeaders("content-type: application/json\ncookie: a=b")

	require.Len(t, s.Issues(), 1)
	assert.Empty(t, s.Warnings())
	assert.Len(t, s.Successes(), 2)
}

func TestAnalyzeHeaders_CaseInsensitive(t *testing.T) {
	s := NewSession()
	flags := s.AnalyzeHeaders("x-CsRf-ToKeN: abc")
	assert.True(t, flags.Has(CSRFHeader))
}
