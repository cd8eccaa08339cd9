package export

import (
	"strconv"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Mismatch describes how an actual rendering differs from the expected one.
type Mismatch struct {
	// Missing lines are expected but absent.
	Missing []string
	// Unexpected lines are present but not expected.
	Unexpected []string

	diffs []diffmatchpatch.Diff
}

func (m *Mismatch) Error() string {
	return "mappings differ from oracle: " +
		strings.Join([]string{
			pluralize(len(m.Missing), "missing"),
			pluralize(len(m.Unexpected), "unexpected"),
		}, ", ")
}

// Unified renders the line diff with -/+ prefixes; equal lines are shown
// with two leading spaces.
func (m *Mismatch) Unified() string {
	var sb strings.Builder

	for _, d := range m.diffs {
		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range splitLines(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// Compare diffs expected against actual line by line. It returns nil when
// both hold the same lines in the same order; a missing final newline is
// not a difference.
func Compare(expected, actual string) *Mismatch {
	expected, actual = normalize(expected), normalize(actual)
	if expected == actual {
		return nil
	}

	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(expected, actual)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	m := &Mismatch{diffs: diffs}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			m.Missing = append(m.Missing, splitLines(d.Text)...)
		case diffmatchpatch.DiffInsert:
			m.Unexpected = append(m.Unexpected, splitLines(d.Text)...)
		case diffmatchpatch.DiffEqual:
		}
	}

	return m
}

func normalize(text string) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}

	return text + "\n"
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

func pluralize(n int, what string) string {
	if n == 1 {
		return "1 line " + what
	}

	return strconv.Itoa(n) + " lines " + what
}
