package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/astmatch/pkg/mcp"
	"github.com/Sumatoshi-tech/astmatch/pkg/observability"
)

const todoCase = `{
  "name": "todo-reformat",
  "src": {"type": "Javadoc", "pos": {"start": 0, "length": 30}, "children": [
    {"type": "TagElement", "pos": {"start": 3, "length": 17}, "children": [
      {"type": "TextElement", "label": "TODO: fix", "pos": {"start": 4, "length": 9}}]}]},
  "dst": {"type": "Javadoc", "pos": {"start": 0, "length": 30}, "children": [
    {"type": "TagElement", "pos": {"start": 3, "length": 22}, "children": [
      {"type": "TextElement", "label": "TODO", "pos": {"start": 4, "length": 4}},
      {"type": "TextElement", "label": ": fixed", "pos": {"start": 8, "length": 7}}]}]},
  "facts": [{"kind": "javadoc", "javadoc": {
    "before": {"location": {"start": 0, "length": 30}},
    "after": {"location": {"start": 0, "length": 30}},
    "common_doc_elements": [
      {"before": {"text": "TODO: fix", "location": {"start": 4, "length": 9}},
       "after": {"text": "TODO", "location": {"start": 4, "length": 4}}},
      {"before": {"text": "TODO: fix", "location": {"start": 4, "length": 9}},
       "after": {"text": ": fixed", "location": {"start": 8, "length": 7}}}],
    "many_to_many_reformat": true}}],
  "expected": [
    "Javadoc [0,30] \"\" -> Javadoc [0,30] \"\"",
    "TagElement [3,20] \"\" -> TagElement [3,25] \"\"",
    "TextElement [4,13] \"TODO: fix\" -> TextElement [4,8] \"TODO\"",
    "TextElement [4,13] \"TODO: fix\" -> TextElement [8,15] \": fixed\""
  ]
}`

func connect(t *testing.T, deps mcp.ServerDeps) (context.Context, *mcpsdk.ClientSession) {
	t.Helper()

	srv := mcp.NewServer(deps)

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return ctx, session
}

func callText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_ToolsList(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.ServerDeps{})

	toolsResult, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameMatch, mcp.ToolNameCheck, mcp.ToolNameValidate}, toolNames)
	assert.Equal(t, []string{"astmatch_check", "astmatch_match", "astmatch_validate"},
		mcp.NewServer(mcp.ServerDeps{}).ListToolNames())
}

func TestMCPServer_Match(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.ServerDeps{})

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameMatch,
		Arguments: map[string]any{"case": todoCase},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, callText(t, result))

	var out mcp.MatchOutput

	require.NoError(t, json.Unmarshal([]byte(callText(t, result)), &out))
	assert.Equal(t, "todo-reformat", out.Name)
	assert.Equal(t, 4, out.Mappings)
	assert.Equal(t, 4, out.Stats.Mappings)
	assert.Zero(t, out.Stats.MultiSrc)
	assert.Len(t, out.Lines, 4)
}

func TestMCPServer_CheckUsesRecordedExpectation(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.ServerDeps{})

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameCheck,
		Arguments: map[string]any{"case": todoCase},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, callText(t, result))

	var out mcp.CheckOutput

	require.NoError(t, json.Unmarshal([]byte(callText(t, result)), &out))
	assert.True(t, out.Match)

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: mcp.ToolNameCheck,
		Arguments: map[string]any{
			"case":     todoCase,
			"expected": []string{`Javadoc [0,30] "" -> Javadoc [0,30] ""`},
		},
	})
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal([]byte(callText(t, result)), &out))
	assert.False(t, out.Match)
	assert.Empty(t, out.Missing)
	assert.Len(t, out.Unexpected, 3)
}

func TestMCPServer_InputErrors(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.ServerDeps{MaxCaseBytes: 64})

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"empty", map[string]any{"case": " "}, "case parameter is required"},
		{"too large", map[string]any{"case": todoCase}, "exceeds maximum size"},
		{"schema", map[string]any{"case": `{"src": {}}`}, "does not match schema"},
		{"format", map[string]any{"case": `{"a": 1}`, "format": "toml"}, "unsupported case format"},
	}

	for _, tt := range tests {
		result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{Name: mcp.ToolNameValidate, Arguments: tt.args})
		require.NoError(t, err, tt.name)
		assert.True(t, result.IsError, tt.name)
		assert.Contains(t, callText(t, result), tt.want, tt.name)
	}
}

func TestMCPServer_ValidateYAML(t *testing.T) {
	t.Parallel()

	ctx, session := connect(t, mcp.ServerDeps{})

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: mcp.ToolNameValidate,
		Arguments: map[string]any{
			"case":   "src: {type: A, pos: {start: 0, length: 2}}\ndst: {type: A, pos: {start: 0, length: 2}}\n",
			"format": "yaml",
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, callText(t, result))

	var out mcp.ValidateOutput

	require.NoError(t, json.Unmarshal([]byte(callText(t, result)), &out))
	assert.True(t, out.Valid)
	assert.Zero(t, out.Facts)
}

func TestMCPServer_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	red, err := observability.NewREDMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	ctx, session := connect(t, mcp.ServerDeps{Metrics: red})

	_, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameValidate,
		Arguments: map[string]any{"case": ""},
	})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	var errorsTotal int64

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == "astmatch.errors.total" {
				for _, dp := range sum.DataPoints {
					errorsTotal += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(1), errorsTotal)
}
