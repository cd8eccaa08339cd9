package fixture_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/astmatch/pkg/engine"
	"github.com/Sumatoshi-tech/astmatch/pkg/export"
	"github.com/Sumatoshi-tech/astmatch/pkg/fixture"
	"github.com/Sumatoshi-tech/astmatch/pkg/matching"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
)

const todoCase = "testdata/todo-reformat.yaml"

func TestLoad_YAMLCase(t *testing.T) {
	t.Parallel()

	c, err := fixture.Load(todoCase, 1<<20)
	require.NoError(t, err)

	assert.Equal(t, "todo-reformat", c.Name)
	assert.Equal(t, "src/main/java/Task.java", c.SrcPath)
	require.Len(t, c.Facts, 1)
	assert.Equal(t, model.KindJavadoc, c.Facts[0].Kind)
	require.NoError(t, c.Facts[0].Validate())
	assert.True(t, c.Facts[0].Javadoc.ManyToManyReformat)
	assert.Len(t, c.Facts[0].Javadoc.CommonDocElements, 2)
}

func TestLoad_MatchesRecordedOracle(t *testing.T) {
	t.Parallel()

	c, err := fixture.Load(todoCase, 0)
	require.NoError(t, err)

	diff, err := c.FileDiff()
	require.NoError(t, err)

	res, err := engine.New(matching.DefaultOptions()).MatchFile(context.Background(), diff)
	require.NoError(t, err)

	oracle, err := fixture.ReadOracle(fixture.OraclePath(todoCase))
	require.NoError(t, err)

	mismatch := export.Compare(oracle, export.Text(res.Store))
	if mismatch != nil {
		t.Fatalf("%v\n%s", mismatch, mismatch.Unified())
	}
}

func TestSaveLoad_CompressedJSON(t *testing.T) {
	t.Parallel()

	c, err := fixture.Load(todoCase, 0)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "case.json.lz4")
	require.NoError(t, fixture.Save(path, c))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 4)
	assert.Equal(t, []byte{0x04, 0x22, 0x4d, 0x18}, raw[:4], "lz4 frame magic")

	loaded, err := fixture.Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestOracle_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	text := "Javadoc [0,30] \"\" -> Javadoc [0,30] \"\"\n"

	for _, name := range []string{"plain.txt", "framed.txt.lz4"} {
		path := filepath.Join(dir, name)
		require.NoError(t, fixture.WriteOracle(path, text))

		got, err := fixture.ReadOracle(path)
		require.NoError(t, err)
		assert.Equal(t, text, got, name)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	tests := []struct {
		name    string
		path    string
		maxSize uint64
		want    error
	}{
		{"unsupported extension", write("case.toml", "src = 1"), 0, fixture.ErrUnsupportedFormat},
		{"missing dst", write("nodst.yaml", "src: {type: Javadoc, pos: {start: 0, length: 1}}\n"), 0, fixture.ErrInvalidCase},
		{"negative position", write("neg.json",
			`{"src":{"type":"A","pos":{"start":-1,"length":1}},"dst":{"type":"A","pos":{"start":0,"length":1}}}`),
			0, fixture.ErrInvalidCase},
		{"unknown field", write("extra.yaml",
			"src: {type: A, pos: {start: 0, length: 1}}\ndst: {type: A, pos: {start: 0, length: 1}}\nbogus: 1\n"),
			0, fixture.ErrInvalidCase},
		{"malformed json", write("broken.json", "{"), 0, fixture.ErrInvalidCase},
		{"too large", todoCase, 64, fixture.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := fixture.Load(tt.path, tt.maxSize)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoad_UnknownFactKindIsAccepted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "future.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"src: {type: A, pos: {start: 0, length: 1}}\n"+
			"dst: {type: A, pos: {start: 0, length: 1}}\n"+
			"facts:\n  - kind: move_class\n"), 0o600))

	c, err := fixture.Load(path, 0)
	require.NoError(t, err)
	require.Len(t, c.Facts, 1)
	require.ErrorIs(t, c.Facts[0].Validate(), model.ErrUnknownKind)
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))

	for _, name := range []string{"b.yaml", "a.json.lz4", "nested/c.yml", "notes.md", "a.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	paths, err := fixture.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json.lz4"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.yml"),
	}, paths)

	single, err := fixture.Discover(todoCase)
	require.NoError(t, err)
	assert.Equal(t, []string{todoCase}, single)
}

func TestOraclePath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cases/a.txt", fixture.OraclePath("cases/a.yaml"))
	assert.Equal(t, "cases/a.txt.lz4", fixture.OraclePath("cases/a.json.lz4"))
}
