// Package export renders mapping stores in stable text and JSON forms and
// compares rendered results against recorded expectations.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by Write for formats other than text and json.
var ErrUnknownFormat = errors.New("unknown export format")

// Node describes one side of an exported mapping.
type Node struct {
	Type  string `json:"type"`
	Label string `json:"label,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Entry is one exported mapping.
type Entry struct {
	Src Node `json:"src"`
	Dst Node `json:"dst"`
}

func describe(t *tree.Tree, id tree.NodeID) Node {
	pos := t.Pos(id)

	return Node{
		Type:  string(t.Type(id)),
		Label: t.Label(id),
		Start: pos.Start,
		End:   pos.End(),
	}
}

// Line renders n as `Type [start,end] "label"`.
func (n Node) Line() string {
	return n.Type + " [" + strconv.Itoa(n.Start) + "," + strconv.Itoa(n.End) + "] " + strconv.Quote(n.Label)
}

// Line renders e as `src -> dst`.
func (e Entry) Line() string {
	return e.Src.Line() + " -> " + e.Dst.Line()
}

// Entries lists the store's mappings in deterministic order.
func Entries(store *mapping.Store) []Entry {
	sorted := store.Sorted()
	out := make([]Entry, 0, len(sorted))

	for _, m := range sorted {
		out = append(out, Entry{
			Src: describe(store.Src(), m.Src),
			Dst: describe(store.Dst(), m.Dst),
		})
	}

	return out
}

// Lines renders one line per mapping in deterministic order.
func Lines(store *mapping.Store) []string {
	entries := Entries(store)
	out := make([]string, len(entries))

	for i, e := range entries {
		out[i] = e.Line()
	}

	return out
}

// Text renders Lines newline-terminated, the form recorded as oracles.
func Text(store *mapping.Store) string {
	lines := Lines(store)
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// JSON renders the store's entries as an indented JSON array.
func JSON(store *mapping.Store) ([]byte, error) {
	data, err := json.MarshalIndent(Entries(store), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal mappings: %w", err)
	}

	return data, nil
}

// Write renders store to w in the given format.
func Write(w io.Writer, store *mapping.Store, format string) error {
	var data []byte

	switch format {
	case FormatText:
		data = []byte(Text(store))
	case FormatJSON:
		var err error

		data, err = JSON(store)
		if err != nil {
			return err
		}

		data = append(data, '\n')
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write mappings: %w", err)
	}

	return nil
}
