package engine

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// ClearRuleID identifies the rule whose steps are shown when no issue was found
const ClearRuleID = "clear"

// NoCriticalProblem is the first recommendation of a report without issues
const NoCriticalProblem = "✅ No critical problem found!"

// RemediationRule maps issue keywords to an ordered block of remediation steps.
// Steps are text/template strings rendered with the engine variables.
type RemediationRule struct {
	ID            string   `yaml:"id"`
	Description   string   `yaml:"description"`
	Keywords      []string `yaml:"keywords"`
	CaseSensitive bool     `yaml:"case_sensitive"`
	Steps         []string `yaml:"steps"`
}

// Matches reports whether any keyword occurs in the message
func (r RemediationRule) Matches(message string) bool {
	text := message
	if !r.CaseSensitive {
		text = normalize(message)
	}
	for _, kw := range r.Keywords {
		if !r.CaseSensitive {
			kw = normalize(kw)
		}
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// RemediationEngine holds the recommendation catalog
type RemediationEngine struct {
	Rules []RemediationRule
	Clear []string
	Vars  map[string]string
}

// DefaultVars are the template variables used by the built-in rules
func DefaultVars() map[string]string {
	return map[string]string{
		"TokenEndpoint":    DefaultTokenEndpoint,
		"MiddlewareSource": "server/_core/csrf.ts",
		"AdminScript":      "node scripts/create-admin-manual.mjs",
		"Platform":         "Railway",
	}
}

// DefaultRules returns the built-in keyword to remediation table
func DefaultRules() []RemediationRule {
	return []RemediationRule{
		{
			ID:          "token",
			Description: "the CSRF token was not obtained or was sent empty",
			Keywords:    []string{"token"},
			Steps: []string{
				"Check that {{.TokenEndpoint}} is responding",
				"Open the endpoint directly in the browser",
				"Check the server logs on {{.Platform}}",
			},
		},
		{
			ID:          "header",
			Description: "the X-CSRF-Token header is missing from the request",
			Keywords:    []string{"header"},
			Steps: []string{
				"Reload the page bypassing the cache (Ctrl+F5)",
				"Retry in an incognito tab",
				"Clear the browser cache",
			},
		},
		{
			ID:            "forbidden",
			Description:   "the server rejected the token with 403",
			Keywords:      []string{"403"},
			CaseSensitive: true,
			Steps: []string{
				"The CSRF token is being rejected",
				"Check that the token is still valid for this session",
				"Inspect the middleware logs: {{.MiddlewareSource}}",
			},
		},
	}
}

// DefaultClear returns the block shown when no issue was found
func DefaultClear() []string {
	return []string{
		NoCriticalProblem,
		"→ If login failed, the user may not exist",
		"→ Next step: {{.AdminScript}}",
	}
}

// NewRemediationEngine creates an engine loaded with the built-in catalog
func NewRemediationEngine() *RemediationEngine {
	return &RemediationEngine{
		Rules: DefaultRules(),
		Clear: DefaultClear(),
		Vars:  DefaultVars(),
	}
}

// SetVar overrides one template variable
func (e *RemediationEngine) SetVar(name, value string) {
	if e.Vars == nil {
		e.Vars = DefaultVars()
	}
	e.Vars[name] = value
}

// LoadTemplates reads YAML rules from a directory in file name order.
// A rule with a known ID replaces it, a new ID is appended, and the
// rule with ID "clear" replaces the no-issue block.
func (e *RemediationEngine) LoadTemplates(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if !entry.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}

		var r RemediationRule
		if err := yaml.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if r.ID == "" {
			return fmt.Errorf("failed to parse %s: rule has no id", name)
		}
		for i, step := range r.Steps {
			if _, err := template.New(r.ID).Parse(step); err != nil {
				return fmt.Errorf("failed to parse %s step %d: %w", name, i+1, err)
			}
		}
		e.addRule(r)
	}
	return nil
}

func (e *RemediationEngine) addRule(r RemediationRule) {
	if r.ID == ClearRuleID {
		e.Clear = r.Steps
		return
	}
	for i := range e.Rules {
		if e.Rules[i].ID == r.ID {
			e.Rules[i] = r
			return
		}
	}
	e.Rules = append(e.Rules, r)
}

// ListRules returns "id: keywords (description)" per rule, in evaluation order
func (e *RemediationEngine) ListRules() []string {
	list := make([]string, 0, len(e.Rules))
	for _, r := range e.Rules {
		line := fmt.Sprintf("%s: %s", r.ID, strings.Join(r.Keywords, ", "))
		if r.Description != "" {
			line += " (" + r.Description + ")"
		}
		list = append(list, line)
	}
	return list
}

// Recommend builds the recommendation lines for a list of issues.
// Each rule contributes its numbered block once if any issue matches it.
func (e *RemediationEngine) Recommend(issues []Finding) []string {
	if len(issues) == 0 {
		lines := make([]string, 0, len(e.Clear))
		for _, step := range e.Clear {
			lines = append(lines, e.render(step))
		}
		return lines
	}

	lines := make([]string, 0)
	for _, rule := range e.Rules {
		if !anyMatch(rule, issues) {
			continue
		}
		for i, step := range rule.Steps {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, e.render(step)))
		}
	}
	return lines
}

func anyMatch(rule RemediationRule, issues []Finding) bool {
	for _, issue := range issues {
		if rule.Matches(issue.Message) {
			return true
		}
	}
	return false
}

// render expands a step; a step that fails to render is returned as written.
func (e *RemediationEngine) render(step string) string {
	out, err := renderString("step", step, e.Vars)
	if err != nil {
		return step
	}
	return out
}

func renderString(name, tmplStr string, vars map[string]string) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
