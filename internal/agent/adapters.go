package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nova-migration/migrate-go/internal/domain"
)

// ErrAdapterMismatch reports an agent payload whose shape cannot be mapped to
// the expected result. Absent fields are not a mismatch; they take defaults.
var ErrAdapterMismatch = errors.New("adapter mismatch")

func mismatch(agent, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", agent, ErrAdapterMismatch, fmt.Sprintf(format, args...))
}

// ParseTestCases reads test_cases from the test generator payload. Cases
// without an id are numbered TC001, TC002, ... by position, skipping ids the
// generator assigned itself.
func ParseTestCases(payload json.RawMessage) ([]domain.TestCase, error) {
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return nil, mismatch("test generator", "payload is %s, want object", root.Type)
	}

	list := root.Get("test_cases")
	if !list.Exists() || list.Type == gjson.Null {
		return []domain.TestCase{}, nil
	}
	if !list.IsArray() {
		return nil, mismatch("test generator", "test_cases is %s, want array", list.Type)
	}

	items := list.Array()
	cases := make([]domain.TestCase, 0, len(items))
	taken := make(map[string]bool, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, mismatch("test generator", "test_cases[%d] is %s, want object", i, item.Type)
		}
		tc := domain.TestCase{
			TestID:         item.Get("test_id").String(),
			Input:          item.Get("input").String(),
			ExpectedOutput: item.Get("expected_output").String(),
		}
		if tc.TestID != "" {
			taken[tc.TestID] = true
		}
		cases = append(cases, tc)
	}

	// Positional ids skip any id the generator already used.
	for i := range cases {
		if cases[i].TestID != "" {
			continue
		}
		n := i + 1
		for taken[fmt.Sprintf("TC%03d", n)] {
			n++
		}
		cases[i].TestID = fmt.Sprintf("TC%03d", n)
		taken[cases[i].TestID] = true
	}
	return cases, nil
}

// ExtractMigratedPrompt locates the migrated prompt. Precedence: the
// migrated_prompt field, the prompt field, the payload itself when it is a
// JSON string, the response field. The first non-empty string wins.
func ExtractMigratedPrompt(payload json.RawMessage) (string, error) {
	root := gjson.ParseBytes(payload)
	candidates := []gjson.Result{
		root.Get("migrated_prompt"),
		root.Get("prompt"),
		root,
		root.Get("response"),
	}
	for _, c := range candidates {
		if c.Type == gjson.String && c.Str != "" {
			return c.Str, nil
		}
	}
	return "", mismatch("prompt migrator", "no migrated prompt in response")
}

// ParseGaps reads performance_gaps from the comparator payload and
// normalizes each entry.
func ParseGaps(payload json.RawMessage) ([]domain.PerformanceGap, error) {
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return nil, mismatch("comparator", "payload is %s, want object", root.Type)
	}

	list := root.Get("performance_gaps")
	if !list.Exists() || list.Type == gjson.Null {
		return []domain.PerformanceGap{}, nil
	}
	if !list.IsArray() {
		return nil, mismatch("comparator", "performance_gaps is %s, want array", list.Type)
	}

	items := list.Array()
	gaps := make([]domain.PerformanceGap, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, mismatch("comparator", "performance_gaps[%d] is %s, want object", i, item.Type)
		}
		gaps = append(gaps, domain.NormalizeGap(domain.RawPerformanceGap{
			Gap:          item.Get("gap").String(),
			Example:      item.Get("example").String(),
			Frequency:    item.Get("frequency").String(),
			SuggestedFix: item.Get("suggested_fix").String(),
		}))
	}
	return gaps, nil
}

// ParseImprovement reads the improver payload. A string response field that
// itself holds a JSON object is preferred over the outer payload.
func ParseImprovement(payload json.RawMessage) (domain.Improvement, error) {
	root := gjson.ParseBytes(payload)
	if inner := root.Get("response"); inner.Type == gjson.String {
		text := strings.TrimSpace(inner.Str)
		if gjson.Valid(text) {
			if parsed := gjson.Parse(text); parsed.IsObject() {
				root = parsed
			}
		}
	}
	if !root.IsObject() {
		return domain.Improvement{}, mismatch("prompt improver", "payload is %s, want object", root.Type)
	}

	imp := domain.Improvement{ChangesApplied: []string{}}

	prompt := root.Get("improved_prompt")
	switch prompt.Type {
	case gjson.String:
		imp.ImprovedPrompt = prompt.Str
	case gjson.Null:
	default:
		return domain.Improvement{}, mismatch("prompt improver", "improved_prompt is %s, want string", prompt.Type)
	}

	changes := root.Get("changes_applied")
	if !changes.Exists() || changes.Type == gjson.Null {
		return imp, nil
	}
	if !changes.IsArray() {
		return domain.Improvement{}, mismatch("prompt improver", "changes_applied is %s, want array", changes.Type)
	}
	for _, c := range changes.Array() {
		imp.ChangesApplied = append(imp.ChangesApplied, describeChange(c))
	}
	return imp, nil
}

func describeChange(c gjson.Result) string {
	if c.Type == gjson.String {
		return c.Str
	}
	if c.IsObject() {
		if m := c.Get("modification"); m.Type == gjson.String && m.Str != "" {
			return m.Str
		}
		if e := c.Get("expected_impact"); e.Type == gjson.String && e.Str != "" {
			return e.Str
		}
	}
	return "Optimization applied"
}
