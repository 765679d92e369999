// Package schema validates decoded document headers against per-kind JSON
// Schemas.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/abhisek/coursesync/internal/content"
	"github.com/abhisek/coursesync/internal/frontmatter"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema definition.
type Schema struct {
	Name       string
	Definition map[string]any
}

// ValidationError reports a header that does not satisfy its schema.
type ValidationError struct {
	Schema string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("header does not match %s schema: %v", e.Schema, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == content.ErrValidation }

// compiled caches compiled schemas by name.
var compiled sync.Map // map[string]*jsonschema.Schema

// Validate checks h against s.
func Validate(s *Schema, h *frontmatter.Header) error {
	if s == nil {
		return nil
	}
	sch, err := compile(s)
	if err != nil {
		return err
	}

	// The validator expects decoded JSON values, so the header goes through
	// an encode/decode cycle to normalize number types.
	raw, err := json.Marshal(h.Map())
	if err != nil {
		return &ValidationError{Schema: s.Name, Err: fmt.Errorf("encode header: %w", err)}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Schema: s.Name, Err: fmt.Errorf("decode header: %w", err)}
	}
	if err := sch.Validate(doc); err != nil {
		return &ValidationError{Schema: s.Name, Err: err}
	}
	return nil
}

// ValidateKind checks h against the schema registered for kind.
func ValidateKind(kind content.Kind, h *frontmatter.Header) error {
	return Validate(For(kind), h)
}

func compile(s *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", s.Name, err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", s.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}
