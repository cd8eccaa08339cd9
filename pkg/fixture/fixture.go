// Package fixture loads matching cases and their recorded oracles.
//
// A case file holds a source and a destination tree plus the semantic diff
// facts between them, in YAML or JSON. Either form may be LZ4 framed, which
// is selected by a trailing ".lz4" extension. Cases are validated against an
// embedded JSON schema before they are decoded.
package fixture

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pierrec/lz4/v4"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/astmatch/pkg/engine"
	"github.com/Sumatoshi-tech/astmatch/pkg/model"
	"github.com/Sumatoshi-tech/astmatch/pkg/tree"
)

// SchemaFS contains the embedded case schema.
//
//go:embed case-schema.json
var SchemaFS embed.FS

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported case format")
	ErrTooLarge          = errors.New("case exceeds size limit")
	ErrInvalidCase       = errors.New("case does not match schema")
)

// Format is the encoding of a case file.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

const (
	compressedExt = ".lz4"
	schemaFile    = "case-schema.json"
)

// Case is one matching scenario.
type Case struct {
	Name    string         `json:"name,omitempty"     yaml:"name,omitempty"`
	SrcPath string         `json:"src_path,omitempty" yaml:"src_path,omitempty"`
	DstPath string         `json:"dst_path,omitempty" yaml:"dst_path,omitempty"`
	Src     *tree.Document `json:"src"                yaml:"src"`
	Dst     *tree.Document `json:"dst"                yaml:"dst"`
	Facts   []model.Fact   `json:"facts,omitempty"    yaml:"facts,omitempty"`

	// Expected optionally inlines the oracle lines.
	Expected []string `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// FileDiff builds the trees of c.
func (c *Case) FileDiff() (engine.FileDiff, error) {
	src, err := tree.FromDocument(c.Src)
	if err != nil {
		return engine.FileDiff{}, fmt.Errorf("case %s: source tree: %w", c.Name, err)
	}

	dst, err := tree.FromDocument(c.Dst)
	if err != nil {
		return engine.FileDiff{}, fmt.Errorf("case %s: destination tree: %w", c.Name, err)
	}

	return engine.FileDiff{
		SrcPath: c.SrcPath,
		DstPath: c.DstPath,
		Src:     src,
		Dst:     dst,
		Facts:   c.Facts,
	}, nil
}

// FormatOf picks the format from the file extension, ignoring a trailing ".lz4".
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, compressedExt))) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// IsCase reports whether path names a case file.
func IsCase(path string) bool {
	_, err := FormatOf(path)

	return err == nil
}

// Load reads, validates and decodes the case at path. A maxSize of zero
// disables the size limit; otherwise it bounds the decompressed size.
func Load(path string, maxSize uint64) (*Case, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := readFile(path, maxSize)
	if err != nil {
		return nil, err
	}

	c, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if c.Name == "" {
		c.Name = caseName(path)
	}

	return c, nil
}

// Decode validates data against the case schema and decodes it.
func Decode(data []byte, format Format) (*Case, error) {
	doc, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}

	var c Case

	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("decode case: %w", err)
	}

	return &c, nil
}

// Validate checks a JSON document against the embedded case schema.
func Validate(doc []byte) error {
	schema, err := SchemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCase, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		msgs = append(msgs, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrInvalidCase, strings.Join(msgs, "; "))
}

// toJSON normalizes a case to JSON so one schema serves both formats.
func toJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidCase)
		}

		return data, nil
	case FormatYAML:
		var doc any

		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCase, err)
		}

		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCase, err)
		}

		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Encode renders c in the given format.
func Encode(c *Case, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode case: %w", err)
		}

		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode case: %w", err)
		}

		return data, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// Discover lists the case files under root in lexical order. A root that
// is itself a case file is returned as is.
func Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if !d.IsDir() && IsCase(path) {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.Sort(paths)

	return paths, nil
}

func caseName(path string) string {
	base := filepath.Base(strings.TrimSuffix(path, compressedExt))

	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readFile(path string, maxSize uint64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, compressedExt) {
		r = lz4.NewReader(f)
	}

	if maxSize > 0 {
		r = io.LimitReader(r, int64(maxSize)+1) //nolint:gosec // sizes come from humanize.ParseBytes
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if maxSize > 0 && uint64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: %s is larger than %s", ErrTooLarge, path, humanize.Bytes(maxSize))
	}

	return data, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	var w io.Writer = f

	var zw *lz4.Writer
	if strings.HasSuffix(path, compressedExt) {
		zw = lz4.NewWriter(f)
		w = zw
	}

	_, err = w.Write(data)

	if zw != nil {
		err = errors.Join(err, zw.Close())
	}

	err = errors.Join(err, f.Close())
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// Save writes c to path, in the format and framing its extension selects.
func Save(path string, c *Case) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := Encode(c, format)
	if err != nil {
		return err
	}

	return writeFile(path, data)
}

// ReadOracle reads the recorded expected output at path.
func ReadOracle(path string) (string, error) {
	data, err := readFile(path, 0)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// WriteOracle records text as the expected output at path.
func WriteOracle(path, text string) error {
	return writeFile(path, []byte(text))
}

// OraclePath returns the oracle path conventionally paired with a case:
// the case path with its format extension replaced by ".txt", keeping
// ".lz4" framing.
func OraclePath(casePath string) string {
	trimmed := strings.TrimSuffix(casePath, compressedExt)
	oracle := strings.TrimSuffix(trimmed, filepath.Ext(trimmed)) + ".txt"

	if trimmed != casePath {
		oracle += compressedExt
	}

	return oracle
}
