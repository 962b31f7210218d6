package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const healthyConsole = `[CSRF] Token obtained successfully: 3f9a...
[tRPC Client] CSRF token included: 3f9a...
[tRPC Client] Credentials: include
POST /api/trpc/auth.login status: 200`

func TestAnalyzeConsoleLog_AlwaysReturnsEightFlags(t *testing.T) {
	inputs := []string{"", "random noise", "\x00\xff\xfe", healthyConsole, strings.Repeat("status: 403 ", 100)}
	for _, in := range inputs {
		s := NewSession()
		flags := s.AnalyzeConsoleLog(in)
		assert.Len(t, flags, 8)
		for _, m := range ConsoleMarkers {
			_, ok := flags[m.Condition]
			assert.True(t, ok, "missing flag %s", m.Condition)
		}
	}
}

func TestAnalyzeConsoleLog_Healthy(t *testing.T) {
	s := NewSession()
	flags := s.AnalyzeConsoleLog(healthyConsole)

	assert.True(t, flags.Has(TokenObtained))
	assert.True(t, flags.Has(TokenIncluded))
	assert.True(t, flags.Has(CredentialsSet))
	assert.True(t, flags.Has(Status200))
	assert.False(t, flags.Has(TokenError))

	assert.Empty(t, s.Issues())
	assert.Empty(t, s.Warnings())

	successes := s.Successes()
	require.Len(t, successes, 5)
	assert.Equal(t, "Found: [CSRF] Token obtained successfully", successes[0].Message)
	assert.Equal(t, "Response 200 - request succeeded", successes[4].Message)
}

func TestAnalyzeConsoleLog_CaseInsensitive(t *testing.T) {
	s := NewSession()
	flags := s.AnalyzeConsoleLog("[csrf] TOKEN OBTAINED SUCCESSFULLY\nSTATUS: 200")
	assert.True(t, flags.Has(TokenObtained))
	assert.True(t, flags.Has(Status200))
}

func TestAnalyzeConsoleLog_EmptyInput(t *testing.T) {
	s := NewSession()
	flags := s.AnalyzeConsoleLog("")

	for _, v := range flags {
		assert.False(t, v)
	}
	assert.Empty(t, s.Successes())

	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "never obtained")

	warnings := s.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "Credentials")
}

func TestAnalyzeConsoleLog_TokenError(t *testing.T) {
	s := NewSession()
	s.AnalyzeConsoleLog("[CSRF] Error getting token: TypeError: Failed to fetch\n[tRPC Client] Credentials: include")

	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, DefaultTokenEndpoint)
	assert.Empty(t, s.Warnings())
}

func TestAnalyzeConsoleLog_ErrorWinsOverObtained(t *testing.T) {
	s := NewSession()
	s.AnalyzeConsoleLog("[CSRF] Token obtained successfully\n[CSRF] Error getting token")

	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "Error obtaining CSRF token")
}

func TestAnalyzeConsoleLog_EmptyTokenIsIndependent(t *testing.T) {
	s := NewSession()
	s.AnalyzeConsoleLog("[CSRF] Token obtained successfully\n[tRPC Client] CSRF token included: EMPTY!\n[tRPC Client] Credentials: include")

	issues := s.Issues()
	require.Len(t, issues, 1)
	assert.Equal(t, "Token is EMPTY when sent!", issues[0].Message)
}

func TestAnalyzeConsoleLog_StatusPriority(t *testing.T) {
	tests := []struct {
		name     string
		log      string
		severity Severity
		contains string
	}{
		{"200 beats 403", "status: 403\nstatus: 200", SeveritySuccess, "Response 200"},
		{"200 beats 401", "status: 401 status: 200", SeveritySuccess, "Response 200"},
		{"403 beats 401", "status: 401\nstatus: 403", SeverityIssue, "Response 403"},
		{"401 alone", "status: 401", SeverityWarning, "Response 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession()
			s.AnalyzeConsoleLog("[CSRF] Token obtained successfully\n[tRPC Client] Credentials: include\n" + tt.log)

			var bucket []Finding
			switch tt.severity {
			case SeveritySuccess:
				bucket = s.Successes()
			case SeverityWarning:
				bucket = s.Warnings()
			case SeverityIssue:
				bucket = s.Issues()
			}
			matches := 0
			for _, f := range s.Findings() {
				if strings.HasPrefix(f.Message, "Response ") {
					matches++
				}
			}
			assert.Equal(t, 1, matches, "exactly one status outcome")
			require.NotEmpty(t, bucket)
			assert.Contains(t, bucket[len(bucket)-1].Message, tt.contains)
		})
	}
}

func TestAnalyzeConsoleLog_RepeatedCallsAppend(t *testing.T) {
	s := NewSession()
	s.AnalyzeConsoleLog(healthyConsole)
	first := s.Findings()

	s.AnalyzeConsoleLog(healthyConsole)
	second := s.Findings()

	require.Len(t, second, 2*len(first))
	assert.Equal(t, first, s.Successes()[:len(first)])
}
