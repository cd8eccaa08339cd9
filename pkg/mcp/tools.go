package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/astmatch/pkg/engine"
	"github.com/Sumatoshi-tech/astmatch/pkg/export"
	"github.com/Sumatoshi-tech/astmatch/pkg/fixture"
	"github.com/Sumatoshi-tech/astmatch/pkg/mapping"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
)

// Tool name constants.
const (
	ToolNameMatch    = "astmatch_match"
	ToolNameCheck    = "astmatch_check"
	ToolNameValidate = "astmatch_validate"
)

// MaxCaseInputBytes is the default limit for inline case input (4 MB).
const MaxCaseInputBytes = 4 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCase indicates the case parameter is empty.
	ErrEmptyCase = errors.New("case parameter is required and must not be empty")
	// ErrCaseTooLarge indicates the case input exceeds the size limit.
	ErrCaseTooLarge = errors.New("case input exceeds maximum size")
	// ErrNoExpectation indicates neither the input nor the case carries expected lines.
	ErrNoExpectation = errors.New("expected lines are required when the case records none")
)

// MatchInput is the input schema for the astmatch_match tool.
type MatchInput struct {
	Case   string `json:"case"             jsonschema:"case document with src and dst trees and facts"`
	Format string `json:"format,omitempty" jsonschema:"case encoding: json (default) or yaml"`
}

// CheckInput is the input schema for the astmatch_check tool.
type CheckInput struct {
	Case     string   `json:"case"               jsonschema:"case document with src and dst trees and facts"`
	Format   string   `json:"format,omitempty"   jsonschema:"case encoding: json (default) or yaml"`
	Expected []string `json:"expected,omitempty" jsonschema:"expected mapping lines (default: the case's own expected lines)"`
}

// ValidateInput is the input schema for the astmatch_validate tool.
type ValidateInput struct {
	Case   string `json:"case"             jsonschema:"case document to validate"`
	Format string `json:"format,omitempty" jsonschema:"case encoding: json (default) or yaml"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// MatchOutput is the structured result of astmatch_match.
type MatchOutput struct {
	Name     string             `json:"name,omitempty"`
	Mappings int                `json:"mappings"`
	Skipped  int                `json:"skipped"`
	PerKind  map[model.Kind]int `json:"per_kind"`
	Stats    mapping.Stats      `json:"stats"`
	Lines    []string           `json:"lines"`
}

// CheckOutput is the structured result of astmatch_check.
type CheckOutput struct {
	Match      bool     `json:"match"`
	Missing    []string `json:"missing,omitempty"`
	Unexpected []string `json:"unexpected,omitempty"`
}

// ValidateOutput is the structured result of astmatch_validate.
type ValidateOutput struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"`
	Facts int    `json:"facts"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func (s *Server) decodeCase(text, format string) (*fixture.Case, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyCase
	}

	if len(text) > s.maxCase {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrCaseTooLarge, len(text), s.maxCase)
	}

	f := fixture.FormatJSON
	if format != "" {
		f = fixture.Format(strings.ToLower(format))
	}

	c, err := fixture.Decode([]byte(text), f)
	if err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}

	return c, nil
}

func (s *Server) matchCase(ctx context.Context, text, format string) (*fixture.Case, *engine.Result, error) {
	c, err := s.decodeCase(text, format)
	if err != nil {
		return nil, nil, err
	}

	diff, err := c.FileDiff()
	if err != nil {
		return nil, nil, err
	}

	res, err := s.engine.MatchFile(ctx, diff)
	if err != nil {
		return nil, nil, fmt.Errorf("match case: %w", err)
	}

	return c, res, nil
}

func (s *Server) handleMatch(ctx context.Context, _ *mcpsdk.CallToolRequest, input MatchInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	c, res, err := s.matchCase(ctx, input.Case, input.Format)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(MatchOutput{
		Name:     c.Name,
		Mappings: res.Mappings(),
		Skipped:  res.Skipped,
		PerKind:  res.PerKind,
		Stats:    res.Stats,
		Lines:    export.Lines(res.Store),
	})
}

func (s *Server) handleCheck(ctx context.Context, _ *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	c, res, err := s.matchCase(ctx, input.Case, input.Format)
	if err != nil {
		return errorResult(err)
	}

	expected := input.Expected
	if len(expected) == 0 {
		expected = c.Expected
	}

	if len(expected) == 0 {
		return errorResult(ErrNoExpectation)
	}

	out := CheckOutput{Match: true}

	if mismatch := export.Compare(strings.Join(expected, "\n"), export.Text(res.Store)); mismatch != nil {
		out = CheckOutput{Missing: mismatch.Missing, Unexpected: mismatch.Unexpected}
	}

	return jsonResult(out)
}

func (s *Server) handleValidate(_ context.Context, _ *mcpsdk.CallToolRequest, input ValidateInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	c, err := s.decodeCase(input.Case, input.Format)
	if err != nil {
		return errorResult(err)
	}

	if _, err := c.FileDiff(); err != nil {
		return errorResult(err)
	}

	return jsonResult(ValidateOutput{Valid: true, Name: c.Name, Facts: len(c.Facts)})
}
