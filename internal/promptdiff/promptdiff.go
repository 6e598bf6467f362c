// Package promptdiff computes the line diff shown between the migrated
// prompt and the improved prompt.
package promptdiff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Op classifies one diff line.
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Line is one line of a diff.
type Line struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Diff is the line-level difference between two prompts.
type Diff struct {
	Lines     []Line `json:"lines"`
	Added     int    `json:"added"`
	Removed   int    `json:"removed"`
	Unchanged int    `json:"unchanged"`
}

// Changed reports whether the prompts differ.
func (d Diff) Changed() bool {
	return d.Added > 0 || d.Removed > 0
}

// Compare diffs before against after line by line. Replaced blocks are
// reported as deletions followed by insertions.
func Compare(before, after string) Diff {
	a, b := splitLines(before), splitLines(after)
	d := Diff{Lines: make([]Line, 0, max(len(a), len(b)))}

	for _, oc := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch oc.Tag {
		case 'e':
			for _, l := range a[oc.I1:oc.I2] {
				d.Lines = append(d.Lines, Line{Op: OpEqual, Text: l})
				d.Unchanged++
			}
		case 'd':
			d.removed(a[oc.I1:oc.I2])
		case 'i':
			d.added(b[oc.J1:oc.J2])
		case 'r':
			d.removed(a[oc.I1:oc.I2])
			d.added(b[oc.J1:oc.J2])
		}
	}
	return d
}

func (d *Diff) removed(lines []string) {
	for _, l := range lines {
		d.Lines = append(d.Lines, Line{Op: OpDelete, Text: l})
		d.Removed++
	}
}

func (d *Diff) added(lines []string) {
	for _, l := range lines {
		d.Lines = append(d.Lines, Line{Op: OpInsert, Text: l})
		d.Added++
	}
}

// Unified renders a unified diff with three lines of context, labelled
// with the given names. Identical prompts produce "".
func Unified(before, after, fromName, toName string) (string, error) {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(normalize(before)),
		B:        difflib.SplitLines(normalize(after)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("promptdiff: unified diff: %w", err)
	}
	return out, nil
}

func splitLines(s string) []string {
	s = normalize(s)
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
