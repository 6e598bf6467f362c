package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-migration/migrate-go/internal/domain"
)

func TestParseTestCases(t *testing.T) {
	payload := json.RawMessage(`{"test_cases":[
		{"test_id":"TC001","input":"hi","expected_output":"hello"},
		{"input":"no id","expected_output":"x"}
	]}`)

	cases, err := ParseTestCases(payload)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, domain.TestCase{TestID: "TC001", Input: "hi", ExpectedOutput: "hello"}, cases[0])
	assert.Equal(t, "TC002", cases[1].TestID)
}

func TestParseTestCases_PositionalIDsSkipExplicitOnes(t *testing.T) {
	payload := json.RawMessage(`{"test_cases":[
		{"input":"first"},
		{"test_id":"TC001","input":"second"},
		{"input":"third"},
		{"test_id":"TC003","input":"fourth"}
	]}`)

	cases, err := ParseTestCases(payload)
	require.NoError(t, err)

	ids := make([]string, 0, len(cases))
	for _, tc := range cases {
		ids = append(ids, tc.TestID)
	}
	assert.Equal(t, []string{"TC002", "TC001", "TC004", "TC003"}, ids)
}

func TestParseTestCases_AbsentIsEmpty(t *testing.T) {
	cases, err := ParseTestCases(json.RawMessage(`{"other":1}`))
	require.NoError(t, err)
	assert.NotNil(t, cases)
	assert.Empty(t, cases)
}

func TestParseTestCases_Mismatch(t *testing.T) {
	for _, payload := range []string{`{"test_cases":"many"}`, `{"test_cases":[1,2]}`, `[1]`, `"text"`} {
		_, err := ParseTestCases(json.RawMessage(payload))
		assert.ErrorIs(t, err, ErrAdapterMismatch, payload)
	}
}

func TestExtractMigratedPrompt_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"migrated_prompt wins", `{"migrated_prompt":"A","prompt":"B","response":"C"}`, "A"},
		{"prompt second", `{"prompt":"B","response":"C"}`, "B"},
		{"raw string third", `"D"`, "D"},
		{"response last", `{"response":"C"}`, "C"},
		{"empty migrated_prompt skipped", `{"migrated_prompt":"","prompt":"B"}`, "B"},
		{"non-string migrated_prompt skipped", `{"migrated_prompt":{"x":1},"response":"C"}`, "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractMigratedPrompt(json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractMigratedPrompt_None(t *testing.T) {
	got, err := ExtractMigratedPrompt(json.RawMessage(`{"status":"ok"}`))
	assert.ErrorIs(t, err, ErrAdapterMismatch)
	assert.Empty(t, got)
}

func TestExtractMigratedPrompt_FromFencedEnvelope(t *testing.T) {
	body, err := json.Marshal(map[string]string{
		"response": "```json\n{\"migrated_prompt\":\"Assistant instructions...\"}\n```",
	})
	require.NoError(t, err)

	payload, err := DecodeEnvelope(body)
	require.NoError(t, err)
	got, err := ExtractMigratedPrompt(payload)
	require.NoError(t, err)
	assert.Equal(t, "Assistant instructions...", got)
}

func TestParseGaps(t *testing.T) {
	payload := json.RawMessage(`{"performance_gaps":[
		{"gap":"too long","example":"TC001","frequency":"multiple","suggested_fix":"trim"},
		{"gap":"tone","frequency":2},
		{"frequency":"1"}
	]}`)

	gaps, err := ParseGaps(payload)
	require.NoError(t, err)
	require.Len(t, gaps, 3)
	assert.Equal(t, domain.PerformanceGap{Issue: "too long", Severity: domain.SeverityHigh, Suggestion: "trim"}, gaps[0])
	assert.Equal(t, domain.SeverityMedium, gaps[1].Severity)
	assert.Equal(t, "No suggestion available", gaps[1].Suggestion)
	assert.Equal(t, "Unknown issue", gaps[2].Issue)
	assert.Equal(t, domain.SeverityLow, gaps[2].Severity)
}

func TestParseGaps_AbsentAndMismatch(t *testing.T) {
	gaps, err := ParseGaps(json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Empty(t, gaps)

	_, err = ParseGaps(json.RawMessage(`{"performance_gaps":{"gap":"x"}}`))
	assert.ErrorIs(t, err, ErrAdapterMismatch)
}

func TestParseImprovement_DoubleEncoded(t *testing.T) {
	payload := json.RawMessage(`{"response": "{\"improved_prompt\":\"X\",\"changes_applied\":[\"a\"]}"}`)

	imp, err := ParseImprovement(payload)
	require.NoError(t, err)
	assert.Equal(t, "X", imp.ImprovedPrompt)
	assert.Equal(t, []string{"a"}, imp.ChangesApplied)
}

func TestParseImprovement_DirectAndMixedChanges(t *testing.T) {
	payload := json.RawMessage(`{
		"improved_prompt": "Y",
		"changes_applied": [
			"plain",
			{"modification": "added examples"},
			{"expected_impact": "fewer refusals"},
			{"other": 1},
			42
		]
	}`)

	imp, err := ParseImprovement(payload)
	require.NoError(t, err)
	assert.Equal(t, "Y", imp.ImprovedPrompt)
	assert.Equal(t, []string{
		"plain",
		"added examples",
		"fewer refusals",
		"Optimization applied",
		"Optimization applied",
	}, imp.ChangesApplied)
}

func TestParseImprovement_UnparseableResponseFallsBack(t *testing.T) {
	payload := json.RawMessage(`{"response":"not json","improved_prompt":"Z"}`)

	imp, err := ParseImprovement(payload)
	require.NoError(t, err)
	assert.Equal(t, "Z", imp.ImprovedPrompt)
	assert.Empty(t, imp.ChangesApplied)
}

func TestParseImprovement_Mismatch(t *testing.T) {
	_, err := ParseImprovement(json.RawMessage(`{"improved_prompt": 5}`))
	assert.ErrorIs(t, err, ErrAdapterMismatch)

	_, err = ParseImprovement(json.RawMessage(`{"changes_applied": "all"}`))
	assert.ErrorIs(t, err, ErrAdapterMismatch)
}
