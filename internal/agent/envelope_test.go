package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAny(t *testing.T, raw json.RawMessage) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestDecodeEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want any
	}{
		{
			name: "bare json in response",
			body: `{"response": "{\"a\": 1}"}`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "fenced json in response",
			body: `{"response": "` + "```json\\n{\\\"a\\\": 1}\\n```" + `"}`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "falls back to message",
			body: `{"message": "{\"b\": true}"}`,
			want: map[string]any{"b": true},
		},
		{
			name: "empty envelope decodes to empty object",
			body: `{}`,
			want: map[string]any{},
		},
		{
			name: "object span extracted from prose",
			body: `{"response": "Here you go: {\"c\": \"x\"} hope it helps"}`,
			want: map[string]any{"c": "x"},
		},
		{
			name: "plain text returns the raw envelope",
			body: `{"response": "You are a helpful assistant.", "agent_id": "a1"}`,
			want: map[string]any{"response": "You are a helpful assistant.", "agent_id": "a1"},
		},
		{
			name: "unparseable span returns the raw envelope",
			body: `{"response": "broken {not json}"}`,
			want: map[string]any{"response": "broken {not json}"},
		},
		{
			name: "json string literal",
			body: `{"response": "\"just a string\""}`,
			want: "just a string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := DecodeEnvelope([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeAny(t, raw))
		})
	}
}

func TestDecodeEnvelope_FencedAndBareAreIdentical(t *testing.T) {
	doc := `{"migrated_prompt":"Assistant instructions...","notes":["x","y"]}`
	bare, err := json.Marshal(map[string]string{"response": doc})
	require.NoError(t, err)
	fenced, err := json.Marshal(map[string]string{"response": "```json\n" + doc + "\n```"})
	require.NoError(t, err)

	a, err := DecodeEnvelope(bare)
	require.NoError(t, err)
	b, err := DecodeEnvelope(fenced)
	require.NoError(t, err)
	assert.Equal(t, decodeAny(t, a), decodeAny(t, b))
}

func TestDecodeEnvelope_NotJSON(t *testing.T) {
	_, err := DecodeEnvelope([]byte("<html>bad gateway</html>"))
	assert.Error(t, err)
}
