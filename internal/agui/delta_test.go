package agui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-migration/migrate-go/internal/domain"
)

func TestDiffState(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	prev := domain.NewPipelineState("run-1", now, domain.MigrationInput{})
	require.NoError(t, prev.Enter(domain.StepGenerating, "gen"))
	prev.SetTestCases([]domain.TestCase{{TestID: "TC/1"}, {TestID: "TC002"}})
	prev.Log(now, "one")

	cur := prev
	cur.TestStatuses = map[string]domain.TestStatus{"TC/1": domain.TestRunning, "TC002": domain.TestPending}
	cur.Logs = append(append([]string{}, prev.Logs...), "[09:30:00] two", "[09:30:00] three")

	patches := diffState(prev, cur)
	assert.Equal(t, []Patch{
		{Op: "replace", Path: "/test_statuses/TC~11", Value: domain.TestRunning},
		{Op: "add", Path: "/logs/-", Value: "[09:30:00] two"},
		{Op: "add", Path: "/logs/-", Value: "[09:30:00] three"},
	}, patches)

	assert.Empty(t, diffState(cur, cur))
}

func TestAppended(t *testing.T) {
	assert.Equal(t, []int{3}, appended([]int{1, 2}, []int{1, 2, 3}))
	assert.Empty(t, appended([]int{1, 2}, []int{1, 2}))
	assert.Equal(t, []int{9}, appended([]int{1, 2}, []int{9}))
}
