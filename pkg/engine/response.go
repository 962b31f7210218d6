package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AnalyzeResponse inspects a tRPC style envelope {ok, error: {message}, result}.
// Input that is not JSON yields a single issue and empty flags.
func (s *Session) AnalyzeResponse(jsonText string) EvidenceFlags {
	flags := EvidenceFlags{}

	var data interface{}
	if err := json.Unmarshal([]byte(jsonText), &data); err != nil {
		s.record([]Finding{newFinding(SeverityIssue, "Response is not valid JSON")})
		return flags
	}

	envelope, isObject := data.(map[string]interface{})
	if !isObject {
		return flags
	}

	var found []Finding
	if okValue, exists := envelope["ok"]; exists {
		if truthy(okValue) {
			found = append(found, newFinding(SeveritySuccess, "Response 'ok': true - success"))
			flags[ResponseOK] = true
		} else {
			found = append(found, newFinding(SeverityWarning, "Response 'ok': false"))
			flags[ResponseOK] = false

			if msg, ok := errorMessage(envelope); ok {
				found = append(found, classifyError(msg))
			}
		}
	}

	if _, exists := envelope["result"]; exists {
		found = append(found, newFinding(SeveritySuccess, "Response contains 'result'"))
		flags[HasResult] = true
	}

	s.record(found)
	return flags
}

// errorMessage extracts error.message; a null or missing message is treated as absent.
func errorMessage(envelope map[string]interface{}) (string, bool) {
	errObj, ok := envelope["error"].(map[string]interface{})
	if !ok {
		return "", false
	}
	raw, exists := errObj["message"]
	if !exists || raw == nil {
		return "", false
	}
	if msg, ok := raw.(string); ok {
		return msg, true
	}
	return fmt.Sprint(raw), true
}

func classifyError(msg string) Finding {
	lowered := normalize(msg)
	for _, class := range errorClasses {
		for _, kw := range class.keywords {
			if strings.Contains(lowered, kw) {
				return newFinding(class.severity, "%s: %s", class.label, msg)
			}
		}
	}
	return newFinding(defaultErrorClass.severity, "%s: %s", defaultErrorClass.label, msg)
}

// truthy follows the usual dynamic-language notion of truth for decoded JSON values.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}
