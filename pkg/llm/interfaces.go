// Package llm provides the two narrow capabilities the assistant consumes from
// a language model: free-text completion and structured JSON judging.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Completer generates text for a prompt.
type Completer interface {
	// Complete returns the full generated text.
	Complete(ctx context.Context, prompt, system string) (string, error)
	// Stream calls onChunk for every text delta and returns the concatenated text.
	Stream(ctx context.Context, prompt, system string, onChunk func(string)) (string, error)
}

// Judge returns a JSON object conforming to schema.
type Judge interface {
	Judge(ctx context.Context, prompt string, schema OutputSchema) (json.RawMessage, error)
}

// Client is implemented by every provider adapter.
type Client interface {
	Completer
	Judge
	Model() string
}

// FieldType is the JSON type of a verdict field.
type FieldType string

const (
	FieldBoolean    FieldType = "boolean"
	FieldNumber     FieldType = "number"
	FieldString     FieldType = "string"
	FieldStringList FieldType = "array of strings"
)

// Field describes one property of a judge verdict.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

// OutputSchema declares the JSON object a judge must return.
type OutputSchema struct {
	Name   string
	Fields []Field
}

// Instructions renders the schema as prompt text.
func (s OutputSchema) Instructions() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else. The object has these fields:\n")
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "- %q (%s)", f.Name, f.Type)
		if f.Description != "" {
			b.WriteString(": ")
			b.WriteString(f.Description)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// judgeSystemMessage is shared by all adapters.
const judgeSystemMessage = "You are a strict SQL reviewer. You answer only with JSON."
