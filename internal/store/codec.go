package store

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/roach88/schemata/internal/collection"
	"github.com/roach88/schemata/internal/ir"
)

// linkKey is the single key of a stored link object: {"ref": "<id>"}.
const linkKey = "ref"

// encoded is the storable form of an entity's fields.
type encoded struct {
	fields ir.IRObject             // everything except list properties
	lists  map[string][]*ir.Entity // list property -> members in order
	links  map[string]*ir.Entity   // link property -> target handle
	values map[string]any          // the accepted Go values, nulls filled in
}

// encodeFields checks fields against the class declaration and converts them
// to their stored form. Runtime types must be exactly the sanitized ones.
func encodeFields(spec ir.ClassSpec, fields map[string]any) (*encoded, error) {
	declared := make(map[string]bool, len(spec.Properties))
	for _, p := range spec.Properties {
		declared[p.Name] = true
	}
	for name := range fields {
		if !declared[name] {
			return nil, &FieldError{Class: spec.Name, Property: name, Message: "property is not declared"}
		}
	}

	enc := &encoded{
		fields: make(ir.IRObject, len(spec.Properties)),
		lists:  make(map[string][]*ir.Entity),
		links:  make(map[string]*ir.Entity),
		values: make(map[string]any, len(spec.Properties)),
	}

	for _, p := range spec.Properties {
		v := fields[p.Name]
		if isNil(v) {
			if p.Type == ir.TypeList {
				enc.lists[p.Name] = nil
				enc.values[p.Name] = collection.New(p.Target)
				continue
			}
			if !p.Nullable {
				return nil, &FieldError{Class: spec.Name, Property: p.Name, Message: "value is required"}
			}
			enc.fields[p.Name] = ir.IRNull{}
			enc.values[p.Name] = nil
			continue
		}

		stored, err := encodeValue(p, v)
		if err != nil {
			return nil, &FieldError{Class: spec.Name, Property: p.Name, Message: err.Error()}
		}
		switch p.Type {
		case ir.TypeList:
			c := v.(*collection.Collection)
			enc.lists[p.Name] = c.Slice()
		case ir.TypeLink:
			enc.links[p.Name] = v.(*ir.Entity)
			enc.fields[p.Name] = stored
		default:
			enc.fields[p.Name] = stored
		}
		enc.values[p.Name] = v
	}
	return enc, nil
}

func encodeValue(p ir.PropertySpec, v any) (ir.IRValue, error) {
	switch p.Type {
	case ir.TypeString:
		if s, ok := v.(string); ok {
			return ir.IRString(s), nil
		}
	case ir.TypeInt:
		if n, ok := v.(int64); ok {
			return ir.IRInt(n), nil
		}
	case ir.TypeBool:
		if b, ok := v.(bool); ok {
			return ir.IRBool(b), nil
		}
	case ir.TypeDate:
		if t, ok := v.(time.Time); ok {
			return ir.IRString(t.UTC().Format(time.RFC3339Nano)), nil
		}
	case ir.TypeData:
		if b, ok := v.([]byte); ok {
			return ir.IRString(base64.StdEncoding.EncodeToString(b)), nil
		}
	case ir.TypeLink:
		if e, ok := v.(*ir.Entity); ok {
			if e.Class != p.Target {
				return nil, fmt.Errorf("link to %s, got %s entity", p.Target, e.Class)
			}
			return ir.IRObject{linkKey: ir.IRString(e.ID)}, nil
		}
	case ir.TypeList:
		if c, ok := v.(*collection.Collection); ok {
			if c.ElementClass() != p.Target {
				return nil, fmt.Errorf("list of %s, got collection of %s", p.Target, c.ElementClass())
			}
			return nil, nil
		}
	}
	return nil, fmt.Errorf("declared %s, got %T", p.Type, v)
}

// decodeFields converts stored fields back into sanitized Go values.
// Links decode to unloaded handles; lists to collections of handles.
func decodeFields(spec ir.ClassSpec, stored ir.IRObject, lists map[string][]*ir.Entity) (map[string]any, error) {
	out := make(map[string]any, len(spec.Properties))
	for _, p := range spec.Properties {
		if p.Type == ir.TypeList {
			c, err := collection.FromEntities(p.Target, lists[p.Name]...)
			if err != nil {
				return nil, fmt.Errorf("decode %s.%s: %w", spec.Name, p.Name, err)
			}
			out[p.Name] = c
			continue
		}

		raw, ok := stored[p.Name]
		if _, null := raw.(ir.IRNull); !ok || null {
			out[p.Name] = nil
			continue
		}
		v, err := decodeValue(p, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", spec.Name, p.Name, err)
		}
		out[p.Name] = v
	}
	return out, nil
}

func decodeValue(p ir.PropertySpec, raw ir.IRValue) (any, error) {
	switch p.Type {
	case ir.TypeString:
		if s, ok := raw.(ir.IRString); ok {
			return string(s), nil
		}
	case ir.TypeInt:
		if n, ok := raw.(ir.IRInt); ok {
			return int64(n), nil
		}
	case ir.TypeBool:
		if b, ok := raw.(ir.IRBool); ok {
			return bool(b), nil
		}
	case ir.TypeDate:
		if s, ok := raw.(ir.IRString); ok {
			return time.Parse(time.RFC3339Nano, string(s))
		}
	case ir.TypeData:
		if s, ok := raw.(ir.IRString); ok {
			return base64.StdEncoding.DecodeString(string(s))
		}
	case ir.TypeLink:
		if obj, ok := raw.(ir.IRObject); ok {
			if id, ok := obj[linkKey].(ir.IRString); ok {
				return &ir.Entity{ID: string(id), Class: p.Target}, nil
			}
		}
	}
	return nil, fmt.Errorf("stored value %T does not match declared %s", raw, p.Type)
}

// hashFields extends the stored fields with list member IDs so the content
// hash covers every property.
func hashFields(enc *encoded) ir.IRObject {
	obj := make(ir.IRObject, len(enc.fields)+len(enc.lists))
	for k, v := range enc.fields {
		obj[k] = v
	}
	for name, members := range enc.lists {
		ids := make(ir.IRArray, len(members))
		for i, m := range members {
			ids[i] = ir.IRString(m.ID)
		}
		obj[name] = ids
	}
	return obj
}

// isNil reports untyped nil and typed nil handles.
func isNil(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case *ir.Entity:
		return val == nil
	case *collection.Collection:
		return val == nil
	default:
		return false
	}
}
