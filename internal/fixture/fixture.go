// Package fixture loads YAML fixture documents and builds their entities
// through the sanitizer.
//
// A document lists entities in creation order. A fixture may carry a key
// label; later fixtures refer to the entity with {$ref: label} anywhere a
// link or list element is expected:
//
//	fixtures:
//	  - class: Film
//	    key: hope
//	    values:
//	      remoteId: "1"
//	      title: A New Hope
//	  - class: Screening
//	    values:
//	      venue: Odeon
//	      seats: 120
//	      relatedFilm: {$ref: hope}
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/sanitize"
)

// refKey marks a reference to an earlier fixture's entity.
const refKey = "$ref"

// Document is a parsed fixture file.
type Document struct {
	// Fixtures are applied in order.
	Fixtures []Fixture `yaml:"fixtures"`
}

// Fixture describes one root entity.
type Fixture struct {
	// Class is the class of the entity to create.
	Class string `yaml:"class"`

	// Key optionally labels the entity for later {$ref: key} references.
	Key string `yaml:"key,omitempty"`

	// Values is the keyed description handed to the sanitizer.
	Values map[string]any `yaml:"values"`
}

// Load reads and parses a fixture YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse parses a fixture document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateDocument(&doc); err != nil {
		return nil, fmt.Errorf("invalid fixture document: %w", err)
	}
	return &doc, nil
}

// validateDocument checks required fields and that every reference names an
// earlier label.
func validateDocument(doc *Document) error {
	if len(doc.Fixtures) == 0 {
		return fmt.Errorf("fixtures list is required and must be non-empty")
	}

	labels := make(map[string]bool)
	for i, f := range doc.Fixtures {
		if f.Class == "" {
			return fmt.Errorf("fixtures[%d]: class is required", i)
		}
		if f.Values == nil {
			return fmt.Errorf("fixtures[%d]: values is required (use empty map if no values)", i)
		}
		if err := checkRefs(f.Values, labels); err != nil {
			return fmt.Errorf("fixtures[%d]: %w", i, err)
		}
		if f.Key != "" {
			if labels[f.Key] {
				return fmt.Errorf("fixtures[%d]: duplicate key %q", i, f.Key)
			}
			labels[f.Key] = true
		}
	}
	return nil
}

func checkRefs(v any, labels map[string]bool) error {
	switch val := v.(type) {
	case map[string]any:
		if label, ok := refLabel(val); ok {
			if !labels[label] {
				return fmt.Errorf("reference to unknown or later key %q", label)
			}
			return nil
		}
		for _, elem := range val {
			if err := checkRefs(elem, labels); err != nil {
				return err
			}
		}
	case []any:
		for _, elem := range val {
			if err := checkRefs(elem, labels); err != nil {
				return err
			}
		}
	}
	return nil
}

// refLabel reports whether m is a {$ref: label} marker.
func refLabel(m map[string]any) (string, bool) {
	if len(m) != 1 {
		return "", false
	}
	label, ok := m[refKey].(string)
	return label, ok
}

// Apply builds every fixture in order inside the caller's write scope and
// returns the created entities. The first failure aborts; the caller rolls
// back the scope.
func Apply(ctx context.Context, doc *Document, s *sanitize.Sanitizer, sc sanitize.StoreContext) ([]*ir.Entity, error) {
	byLabel := make(map[string]*ir.Entity)
	created := make([]*ir.Entity, 0, len(doc.Fixtures))

	for i, f := range doc.Fixtures {
		values, err := resolve(f.Values, byLabel)
		if err != nil {
			return nil, fmt.Errorf("fixtures[%d]: %w", i, err)
		}
		e, err := s.Build(ctx, f.Class, values, sc)
		if err != nil {
			return nil, fmt.Errorf("fixtures[%d] (%s): %w", i, f.Class, err)
		}
		if f.Key != "" {
			byLabel[f.Key] = e
		}
		created = append(created, e)
	}
	return created, nil
}

// resolve copies v, replacing {$ref: label} markers with entity handles.
func resolve(v any, byLabel map[string]*ir.Entity) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if label, ok := refLabel(val); ok {
			e, found := byLabel[label]
			if !found {
				return nil, fmt.Errorf("reference to unknown key %q", label)
			}
			return e, nil
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			r, err := resolve(elem, byLabel)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			r, err := resolve(elem, byLabel)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
