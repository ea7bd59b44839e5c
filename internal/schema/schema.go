package schema

import (
	"fmt"
	"sort"

	"github.com/roach88/schemata/internal/ir"
)

// Schema is an immutable class table.
type Schema struct {
	classes map[string]*class
	order   []string
}

type class struct {
	spec  ir.ClassSpec
	props map[string]int // name -> index into spec.Properties
}

// New builds a Schema from class specs.
// The specs are copied; later changes by the caller are not observed.
// Returns an error when specs are inconsistent (duplicate names, unknown
// relationship targets, unusable primary keys).
func New(specs []ir.ClassSpec) (*Schema, error) {
	s := &Schema{classes: make(map[string]*class, len(specs))}

	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("schema: class with empty name")
		}
		if _, dup := s.classes[spec.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate class %q", spec.Name)
		}
		c := &class{
			spec: ir.ClassSpec{
				Name:       spec.Name,
				PrimaryKey: spec.PrimaryKey,
				Properties: append([]ir.PropertySpec(nil), spec.Properties...),
			},
			props: make(map[string]int, len(spec.Properties)),
		}
		for i, p := range c.spec.Properties {
			if _, dup := c.props[p.Name]; dup {
				return nil, fmt.Errorf("schema: class %q: duplicate property %q", spec.Name, p.Name)
			}
			if !ir.ValidTypes[p.Type] {
				return nil, fmt.Errorf("schema: %s.%s: invalid type %q", spec.Name, p.Name, p.Type)
			}
			c.props[p.Name] = i
		}
		s.classes[spec.Name] = c
		s.order = append(s.order, spec.Name)
	}

	for _, name := range s.order {
		if err := s.check(s.classes[name]); err != nil {
			return nil, err
		}
	}
	sort.Strings(s.order)
	return s, nil
}

// MustNew is like New but panics on error.
// Use only in tests or for tables known to be valid.
func MustNew(specs []ir.ClassSpec) *Schema {
	s, err := New(specs)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) check(c *class) error {
	for _, p := range c.spec.Properties {
		switch {
		case p.Type.IsRelationship() && p.Target == "":
			return fmt.Errorf("schema: %s.%s: %s property needs a target class", c.spec.Name, p.Name, p.Type)
		case p.Type.IsRelationship() && s.classes[p.Target] == nil:
			return fmt.Errorf("schema: %s.%s: unknown target class %q", c.spec.Name, p.Name, p.Target)
		case !p.Type.IsRelationship() && p.Target != "":
			return fmt.Errorf("schema: %s.%s: scalar property cannot have a target", c.spec.Name, p.Name)
		}
	}

	if pk := c.spec.PrimaryKey; pk != "" {
		i, ok := c.props[pk]
		if !ok {
			return fmt.Errorf("schema: class %q: primary key %q is not a property", c.spec.Name, pk)
		}
		p := c.spec.Properties[i]
		if p.Type != ir.TypeString && p.Type != ir.TypeInt {
			return fmt.Errorf("schema: class %q: primary key %q must be string or int, got %s", c.spec.Name, pk, p.Type)
		}
		if p.Nullable {
			return fmt.Errorf("schema: class %q: primary key %q cannot be nullable", c.spec.Name, pk)
		}
	}
	return nil
}

// HasClass reports whether the class is declared.
func (s *Schema) HasClass(name string) bool {
	_, ok := s.classes[name]
	return ok
}

// Class returns a copy of a class declaration.
func (s *Schema) Class(name string) (ir.ClassSpec, bool) {
	c, ok := s.classes[name]
	if !ok {
		return ir.ClassSpec{}, false
	}
	spec := c.spec
	spec.Properties = append([]ir.PropertySpec(nil), c.spec.Properties...)
	return spec, true
}

// Classes returns all declared class names, sorted.
func (s *Schema) Classes() []string {
	return append([]string(nil), s.order...)
}

// Specs returns copies of every class declaration in name order.
func (s *Schema) Specs() []ir.ClassSpec {
	specs := make([]ir.ClassSpec, 0, len(s.order))
	for _, name := range s.order {
		spec, _ := s.Class(name)
		specs = append(specs, spec)
	}
	return specs
}

// PrimaryKey returns the primary key property of a class, if it declares one.
func (s *Schema) PrimaryKey(className string) (string, bool) {
	c, ok := s.classes[className]
	if !ok || c.spec.PrimaryKey == "" {
		return "", false
	}
	return c.spec.PrimaryKey, true
}
