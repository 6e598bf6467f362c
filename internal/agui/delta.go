package agui

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/nova-migration/migrate-go/internal/domain"
)

// diffState returns the patches that turn prev into cur. Append-only lists
// (logs, test results) are sent as "add" to "/<field>/-" with only the new
// entries. Everything else is replaced whole when it changes.
func diffState(prev, cur domain.PipelineState) []Patch {
	var patches []Patch
	replace := func(path string, v any) {
		patches = append(patches, Patch{Op: "replace", Path: path, Value: v})
	}

	if prev.Step != cur.Step {
		replace("/step", cur.Step)
	}
	if prev.IsProcessing != cur.IsProcessing {
		replace("/is_processing", cur.IsProcessing)
	}
	if prev.Progress != cur.Progress {
		replace("/progress", cur.Progress)
	}
	if len(prev.TestCases) != len(cur.TestCases) {
		replace("/test_cases", cur.TestCases)
	}
	if prev.MigratedPrompt != cur.MigratedPrompt {
		replace("/migrated_prompt", cur.MigratedPrompt)
	}

	ids := make([]string, 0, len(cur.TestStatuses))
	for id := range cur.TestStatuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if prev.TestStatuses[id] != cur.TestStatuses[id] {
			replace("/test_statuses/"+pointerEscaper.Replace(id), cur.TestStatuses[id])
		}
	}

	for _, r := range appended(prev.TestResults, cur.TestResults) {
		patches = append(patches, Patch{Op: "add", Path: "/test_results/-", Value: r})
	}
	if !sameJSON(prev.PerformanceGaps, cur.PerformanceGaps) {
		replace("/performance_gaps", cur.PerformanceGaps)
	}
	if prev.FinalPrompt != cur.FinalPrompt {
		replace("/final_prompt", cur.FinalPrompt)
	}
	if !sameJSON(prev.Improvements, cur.Improvements) {
		replace("/improvements", cur.Improvements)
	}
	if prev.Error != cur.Error {
		replace("/error", cur.Error)
	}
	for _, line := range appended(prev.Logs, cur.Logs) {
		patches = append(patches, Patch{Op: "add", Path: "/logs/-", Value: line})
	}
	return patches
}

// appended returns the tail of cur past prev. A shorter cur means the
// stream is looking at a different run and everything is new.
func appended[T any](prev, cur []T) []T {
	if len(cur) < len(prev) {
		return cur
	}
	return cur[len(prev):]
}

func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// pointerEscaper escapes a JSON Pointer reference token (RFC 6901).
var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
