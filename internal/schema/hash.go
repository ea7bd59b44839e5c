package schema

import "github.com/roach88/schemata/internal/ir"

// Document encodes the class table as an IRValue in name order.
func (s *Schema) Document() ir.IRArray {
	doc := make(ir.IRArray, 0, len(s.order))
	for _, spec := range s.Specs() {
		props := make(ir.IRArray, 0, len(spec.Properties))
		for _, p := range spec.Properties {
			props = append(props, ir.IRObject{
				"name":     ir.IRString(p.Name),
				"type":     ir.IRString(p.Type),
				"target":   ir.IRString(p.Target),
				"nullable": ir.IRBool(p.Nullable),
			})
		}
		doc = append(doc, ir.IRObject{
			"name":        ir.IRString(spec.Name),
			"primary_key": ir.IRString(spec.PrimaryKey),
			"properties":  props,
		})
	}
	return doc
}

// Hash returns the content hash of the class table. Property declaration
// order is part of the hash; class declaration order is not.
func (s *Schema) Hash() (string, error) {
	return ir.SchemaHash(s.Document())
}
