package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("```json\\s*")
	fenceClose = regexp.MustCompile("```\\s*")
	objectSpan = regexp.MustCompile(`\{[\s\S]*\}`)
)

// DecodeEnvelope extracts the JSON document carried in an agent response
// envelope {response?, message?, ...}. The text field may be wrapped in a
// ```json fence. Resolution order:
//
//  1. parse the text (response, else message, else "{}") after fence removal
//  2. parse the first '{' to last '}' span of the text
//  3. return the envelope itself
//
// An error is returned only when body is not JSON at all.
func DecodeEnvelope(body []byte) (json.RawMessage, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	env, _ := raw.(map[string]any)

	text := envelopeText(env)
	if strings.Contains(text, "```json") {
		text = fenceOpen.ReplaceAllString(text, "")
		text = fenceClose.ReplaceAllString(text, "")
	}
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return json.RawMessage(text), nil
	}

	if span := objectSpan.FindString(text); span != "" && json.Valid([]byte(span)) {
		return json.RawMessage(span), nil
	}

	return json.RawMessage(body), nil
}

func envelopeText(env map[string]any) string {
	if s, ok := env["response"].(string); ok && s != "" {
		return s
	}
	if s, ok := env["message"].(string); ok && s != "" {
		return s
	}
	return "{}"
}
