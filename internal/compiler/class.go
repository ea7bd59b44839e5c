package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/schemata/internal/ir"
)

// CompileClass parses a CUE value into a ClassSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the class struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`class: Film: { ... }`)
//	spec, err := CompileClass(v.LookupPath(cue.ParsePath("class.Film")))
//
// A property is either a struct with type, target and nullable fields, or a
// bare type string:
//
//	property: {
//		remoteId: "string"
//		relatedFilm: { type: "link", target: "Film", nullable: true }
//	}
//
// Properties keep their CUE declaration order. CompileClass checks shape
// only; Validate checks the resulting table.
func CompileClass(v cue.Value) (*ir.ClassSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ClassSpec{}

	// Class name is the struct label (the last path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	if pkVal := v.LookupPath(cue.ParsePath("primary_key")); pkVal.Exists() {
		pk, err := pkVal.String()
		if err != nil {
			return nil, &CompileError{
				Field:   "primary_key",
				Message: "primary_key must be a property name string",
				Pos:     pkVal.Pos(),
			}
		}
		spec.PrimaryKey = pk
	}

	propVal := v.LookupPath(cue.ParsePath("property"))
	if !propVal.Exists() {
		return nil, &CompileError{
			Field:   "property",
			Message: "at least one property is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := propVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		prop, err := parseProperty(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Properties = append(spec.Properties, prop)
	}
	if len(spec.Properties) == 0 {
		return nil, &CompileError{
			Field:   "property",
			Message: "at least one property is required",
			Pos:     propVal.Pos(),
		}
	}

	return spec, nil
}

// parseProperty parses one property declaration.
func parseProperty(name string, v cue.Value) (ir.PropertySpec, error) {
	prop := ir.PropertySpec{Name: name}
	field := "property." + name

	// Bare type string shorthand
	if typ, err := v.String(); err == nil {
		prop.Type = ir.Type(typ)
		return prop, nil
	}

	if v.IncompleteKind() != cue.StructKind {
		return prop, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a type string or struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return prop, &CompileError{
			Field:   field + ".type",
			Message: "type is required",
			Pos:     v.Pos(),
		}
	}
	typ, err := typeVal.String()
	if err != nil {
		return prop, &CompileError{
			Field:   field + ".type",
			Message: "type must be a string",
			Pos:     typeVal.Pos(),
		}
	}
	prop.Type = ir.Type(typ)

	if targetVal := v.LookupPath(cue.ParsePath("target")); targetVal.Exists() {
		target, err := targetVal.String()
		if err != nil {
			return prop, &CompileError{
				Field:   field + ".target",
				Message: "target must be a class name string",
				Pos:     targetVal.Pos(),
			}
		}
		prop.Target = target
	}

	if nullVal := v.LookupPath(cue.ParsePath("nullable")); nullVal.Exists() {
		nullable, err := nullVal.Bool()
		if err != nil {
			return prop, &CompileError{
				Field:   field + ".nullable",
				Message: "nullable must be a bool",
				Pos:     nullVal.Pos(),
			}
		}
		prop.Nullable = nullable
	}

	return prop, nil
}
