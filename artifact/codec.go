package artifact

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/collection.json
var collectionSchema string

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("collection.json", strings.NewReader(collectionSchema)); err != nil {
		panic(fmt.Sprintf("artifact: add collection schema: %v", err))
	}
	schema, err := compiler.Compile("collection.json")
	if err != nil {
		panic(fmt.Sprintf("artifact: compile collection schema: %v", err))
	}
	return schema
}

// Codec converts the artifact collection to and from its single-blob form.
type Codec struct {
	logger *slog.Logger
}

// NewCodec creates a codec. If logger is nil, uses the default slog logger.
func NewCodec(logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{logger: logger}
}

// Encode serializes items as a JSON array in the given order. Nil slices and
// nil tag lists encode as empty arrays.
func (c *Codec) Encode(items []Artifact) (string, error) {
	normalized := make([]Artifact, len(items))
	for i, item := range items {
		if item.Tags == nil {
			item.Tags = []string{}
		}
		normalized[i] = item
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return "", fmt.Errorf("encode artifacts: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode parses a blob. An empty blob, malformed JSON or a value of the wrong
// shape all yield an empty collection; the latter two are logged. Decode
// never fails and never returns nil.
func (c *Codec) Decode(blob string) []Artifact {
	items, reason, err := parse(blob)
	if err != nil {
		return c.degrade(reason, err, blob)
	}
	return items
}

// DecodeStrict parses a blob like Decode but returns the failure instead of
// an empty collection.
func (c *Codec) DecodeStrict(blob string) ([]Artifact, error) {
	items, reason, err := parse(blob)
	if err != nil {
		return nil, fmt.Errorf("%s collection: %w", reason, err)
	}
	return items, nil
}

func parse(blob string) ([]Artifact, string, error) {
	if blob == "" {
		return []Artifact{}, "", nil
	}

	dec := json.NewDecoder(strings.NewReader(blob))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, "malformed", err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, "malformed", errors.New("trailing data after collection")
	}

	if err := compiledSchema.Validate(doc); err != nil {
		return nil, "shape", err
	}

	var items []Artifact
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, "shape", err
	}
	return items, "", nil
}

func (c *Codec) degrade(reason string, err error, blob string) []Artifact {
	c.logger.Warn("artifact collection unreadable, treating as empty",
		"reason", reason,
		"error", err,
		"bytes", len(blob),
	)
	return []Artifact{}
}
