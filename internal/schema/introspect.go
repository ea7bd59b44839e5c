package schema

import "github.com/roach88/schemata/internal/ir"

// Property returns the full declaration of a property: type, target class,
// nullability and (through ir.PropertySpec.Kind) relationship-vs-scalar.
func (s *Schema) Property(className, name string) (ir.PropertySpec, bool) {
	c, ok := s.classes[className]
	if !ok {
		return ir.PropertySpec{}, false
	}
	i, ok := c.props[name]
	if !ok {
		return ir.PropertySpec{}, false
	}
	return c.spec.Properties[i], true
}

// IsProperty reports whether className declares a property called name whose
// declared type is exactly t. Nullability does not affect the answer.
// Unknown classes and properties yield false.
func (s *Schema) IsProperty(className, name string, t ir.Type) bool {
	p, ok := s.Property(className, name)
	return ok && p.Type == t
}

// IsRelationship reports whether name is a link or list property of className
// pointing at target.
func (s *Schema) IsRelationship(className, name, target string) bool {
	p, ok := s.Property(className, name)
	return ok && p.Type.IsRelationship() && p.Target == target
}

// TypeOfProperty returns the class-level descriptor of a relationship
// property. The result is absent when the property does not exist or is a
// scalar, which has no class-level descriptor.
func (s *Schema) TypeOfProperty(className, name string) (ir.TypeDescriptor, bool) {
	p, ok := s.Property(className, name)
	if !ok {
		return ir.TypeDescriptor{}, false
	}
	return p.Descriptor()
}
