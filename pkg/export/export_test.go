package export_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/astmatch/pkg/export"
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

func docTree(t *testing.T, label string) (*tree.Tree, tree.NodeID, tree.NodeID) {
	t.Helper()

	b := tree.NewBuilder()
	root := b.Root(tree.TypeJavadoc, "", tree.Pos{Start: 0, Length: 20})
	text := b.Add(root, tree.TypeTextElement, label, tree.Pos{Start: 3, Length: len(label)})

	built, err := b.Build()
	require.NoError(t, err)

	return built, root, text
}

func sampleStore(t *testing.T) *mapping.Store {
	t.Helper()

	src, srcRoot, srcText := docTree(t, "hello")
	dst, dstRoot, dstText := docTree(t, `say "hi"`)

	store := mapping.NewStore(src, dst)
	// Inserted out of order; export must not depend on insertion order.
	store.Add(srcText, dstText)
	store.Add(srcRoot, dstRoot)

	return store
}

func TestLines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		`Javadoc [0,20] "" -> Javadoc [0,20] ""`,
		`TextElement [3,8] "hello" -> TextElement [3,11] "say \"hi\""`,
	}, export.Lines(sampleStore(t)))
}

func TestText_Empty(t *testing.T) {
	t.Parallel()

	src, _, _ := docTree(t, "a")
	dst, _, _ := docTree(t, "b")

	assert.Empty(t, export.Text(mapping.NewStore(src, dst)))
}

func TestJSON(t *testing.T) {
	t.Parallel()

	data, err := export.JSON(sampleStore(t))
	require.NoError(t, err)

	var entries []export.Entry

	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, export.Node{Type: "TextElement", Label: "hello", Start: 3, End: 8}, entries[1].Src)
}

func TestWrite(t *testing.T) {
	t.Parallel()

	store := sampleStore(t)

	var text bytes.Buffer

	require.NoError(t, export.Write(&text, store, export.FormatText))
	assert.Equal(t, export.Text(store), text.String())

	var js bytes.Buffer

	require.NoError(t, export.Write(&js, store, export.FormatJSON))
	assert.True(t, json.Valid(js.Bytes()))

	require.ErrorIs(t, export.Write(&js, store, "xml"), export.ErrUnknownFormat)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	expected := "a -> a\nb -> b\nc -> c\n"

	assert.Nil(t, export.Compare(expected, expected))
	assert.Nil(t, export.Compare(expected, "a -> a\nb -> b\nc -> c"))

	m := export.Compare(expected, "a -> a\nc -> c\nd -> d\n")
	require.NotNil(t, m)
	assert.Equal(t, []string{"b -> b"}, m.Missing)
	assert.Equal(t, []string{"d -> d"}, m.Unexpected)
	assert.Contains(t, m.Unified(), "- b -> b\n")
	assert.Contains(t, m.Unified(), "+ d -> d\n")
	assert.Equal(t, "mappings differ from oracle: 1 line missing, 1 line unexpected", m.Error())
}
