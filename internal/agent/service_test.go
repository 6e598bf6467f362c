package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-migration/migrate-go/internal/domain"
)

type recordedCall struct {
	agentID string
	message json.RawMessage
}

// scriptedCaller returns canned payloads per agent id and records requests.
type scriptedCaller struct {
	responses map[string]string
	errs      map[string]error
	calls     []recordedCall
}

func (s *scriptedCaller) Call(_ context.Context, agentID string, message any) (json.RawMessage, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return nil, err
	}
	s.calls = append(s.calls, recordedCall{agentID: agentID, message: data})
	if err := s.errs[agentID]; err != nil {
		return nil, err
	}
	return json.RawMessage(s.responses[agentID]), nil
}

var testRegistry = Registry{
	TestGenerator:  "gen",
	PromptMigrator: "mig",
	Executor:       "exec",
	Comparator:     "cmp",
	PromptImprover: "imp",
}

var testInput = domain.MigrationInput{Provider: "openai", Model: "gpt-4o", OriginalPrompt: "You are helpful."}

func TestRegistryValidate(t *testing.T) {
	require.NoError(t, testRegistry.Validate())

	missing := testRegistry
	missing.Comparator = ""
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comparator")
}

func TestService_GenerateTestCases(t *testing.T) {
	c := &scriptedCaller{responses: map[string]string{
		"gen": `{"test_cases":[{"test_id":"TC001","input":"hi","expected_output":"hello"}]}`,
	}}
	svc := NewService(c, testRegistry)

	cases, err := svc.GenerateTestCases(context.Background(), testInput)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	require.Len(t, c.calls, 1)
	assert.Equal(t, "gen", c.calls[0].agentID)
	assert.JSONEq(t, `{"original_prompt":"You are helpful.","provider":"openai","model":"gpt-4o"}`, string(c.calls[0].message))
}

func TestService_MigratePrompt(t *testing.T) {
	c := &scriptedCaller{responses: map[string]string{"mig": `{"migrated_prompt":"Nova prompt"}`}}
	svc := NewService(c, testRegistry)

	prompt, err := svc.MigratePrompt(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "Nova prompt", prompt)
	assert.JSONEq(t, `{"original_prompt":"You are helpful.","source_provider":"openai","source_model":"gpt-4o"}`, string(c.calls[0].message))
}

func TestService_MigratePromptMissing(t *testing.T) {
	c := &scriptedCaller{responses: map[string]string{"mig": `{"notes":"done"}`}}
	svc := NewService(c, testRegistry)

	_, err := svc.MigratePrompt(context.Background(), testInput)
	assert.ErrorIs(t, err, ErrAdapterMismatch)
}

func TestService_ExecuteTest(t *testing.T) {
	c := &scriptedCaller{responses: map[string]string{"exec": `{"output":"hello there"}`}}
	svc := NewService(c, testRegistry)

	out, err := svc.ExecuteTest(context.Background(), "Nova prompt", domain.TestCase{TestID: "TC001", Input: "hi", ExpectedOutput: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"output":"hello there"}`, string(out))
	assert.JSONEq(t, `{"migrated_prompt":"Nova prompt","test_case":{"test_id":"TC001","input":"hi"}}`, string(c.calls[0].message))
}

func TestService_CompareOutputsSendsNullForMissing(t *testing.T) {
	c := &scriptedCaller{responses: map[string]string{"cmp": `{"performance_gaps":[]}`}}
	svc := NewService(c, testRegistry)

	triples := domain.BuildComparison(
		[]domain.TestCase{{TestID: "TC001", Input: "a", ExpectedOutput: "b"}},
		nil,
	)
	gaps, err := svc.CompareOutputs(context.Background(), triples)
	require.NoError(t, err)
	assert.Empty(t, gaps)
	assert.JSONEq(t, `[{"test_input":"a","expected_output":"b","actual_output":null}]`, string(c.calls[0].message))
}

func TestService_ImprovePrompt(t *testing.T) {
	c := &scriptedCaller{responses: map[string]string{
		"imp": `{"response":"{\"improved_prompt\":\"X\",\"changes_applied\":[\"a\"]}"}`,
	}}
	svc := NewService(c, testRegistry)

	gaps := []domain.PerformanceGap{{Issue: "tone", Severity: domain.SeverityLow, Suggestion: "warmer"}}
	imp, err := svc.ImprovePrompt(context.Background(), "Nova prompt", gaps)
	require.NoError(t, err)
	assert.Equal(t, domain.Improvement{ImprovedPrompt: "X", ChangesApplied: []string{"a"}}, imp)
	assert.JSONEq(t,
		`{"current_prompt":"Nova prompt","evaluation_results":{"performance_gaps":[{"issue":"tone","severity":"low","suggestion":"warmer"}]}}`,
		string(c.calls[0].message))
}

func TestService_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	c := &scriptedCaller{errs: map[string]error{"gen": boom}}
	svc := NewService(c, testRegistry)

	_, err := svc.GenerateTestCases(context.Background(), testInput)
	assert.ErrorIs(t, err, boom)
}
