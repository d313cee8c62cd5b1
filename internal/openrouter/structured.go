package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON schema for a structured reply.
type Schema struct {
	Name   string
	raw    json.RawMessage
	schema *jsonschema.Schema
}

// MustSchema compiles a schema document. It panics on an invalid schema,
// so it is meant for package-level variables.
func MustSchema(name, doc string) *Schema {
	s, err := NewSchema(name, doc)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSchema compiles a schema document.
func NewSchema(name, doc string) (*Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	url := name + ".json"
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("adding schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", name, err)
	}
	return &Schema{Name: name, raw: json.RawMessage(doc), schema: compiled}, nil
}

// Validate checks a JSON document against the schema.
func (s *Schema) Validate(doc string) error {
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("reply is not JSON: %w", err)
	}
	if err := s.schema.Validate(inst); err != nil {
		return fmt.Errorf("reply does not match %s: %w", s.Name, err)
	}
	return nil
}

// ChatJSON asks for a reply conforming to schema, validates it, and
// decodes it into v.
func (c *Client) ChatJSON(ctx context.Context, model, system, prompt string, schema *Schema, v any) error {
	reply, err := c.complete(ctx, chatRequest{
		Model: model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   schema.Name,
				Strict: true,
				Schema: schema.raw,
			},
		},
	})
	if err != nil {
		return err
	}

	reply = StripFences(reply)
	if err := schema.Validate(reply); err != nil {
		return err
	}
	return json.Unmarshal([]byte(reply), v)
}

// StripFences removes a surrounding markdown code fence, with or without
// a rust/rs/json language tag.
func StripFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed
	for _, open := range []string{"```rust", "```rs", "```json", "```"} {
		if rest, ok := strings.CutPrefix(trimmed, open); ok {
			body = rest
			break
		}
	}
	body, _ = strings.CutSuffix(body, "```")
	return strings.TrimSpace(body)
}
