package sanitize

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/roach88/schemata/internal/collection"
	"github.com/roach88/schemata/internal/ir"
)

// walker plans one Sanitize or Build call.
type walker struct {
	ctx    context.Context
	s      *Sanitizer
	sc     StoreContext
	active map[uintptr]bool // descriptions currently being expanded
}

// root plans the entity described by raw.
func (w *walker) root(class string, raw any) (*pendingEntity, error) {
	if !w.s.schema.HasClass(class) {
		return nil, &Error{Code: CodeUnknownProperty, Class: class, Value: raw,
			Message: "class is not declared"}
	}
	desc, id, ok := keyed(raw)
	if !ok {
		return nil, &Error{Code: CodeTypeMismatch, Class: class, Value: raw,
			Message: fmt.Sprintf("cannot build %s from %T", class, raw)}
	}
	return w.entity(class, desc, id, "", 0)
}

// entity plans a new entity of class from a keyed description.
func (w *walker) entity(class string, desc map[string]any, id uintptr, path string, depth int) (*pendingEntity, error) {
	w.active[id] = true
	defer delete(w.active, id)

	names := make([]string, 0, len(desc))
	for name := range desc {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := w.s.schema.Property(class, name); !ok {
			return nil, &Error{Code: CodeUnknownProperty, Class: class, Property: name,
				Path: join(path, name), Value: desc[name], Message: "property is not declared"}
		}
	}

	spec, _ := w.s.schema.Class(class)
	n := &pendingEntity{class: class, path: path, fields: make(map[string]plan, len(desc))}
	for _, p := range spec.Properties {
		raw, present := desc[p.Name]
		if !present {
			if p.Type == ir.TypeList || p.Nullable {
				continue
			}
			return nil, &Error{Code: CodeUnsupportedCoercion, Class: class, Property: p.Name,
				Path: join(path, p.Name), Message: "value is required"}
		}
		planned, err := w.property(class, p.Name, raw, join(path, p.Name), depth)
		if err != nil {
			return nil, err
		}
		n.names = append(n.names, p.Name)
		n.fields[p.Name] = planned
	}
	return n, nil
}

// property plans the value of one property.
func (w *walker) property(class, name string, raw any, path string, depth int) (plan, error) {
	p, ok := w.s.schema.Property(class, name)
	if !ok {
		return nil, &Error{Code: CodeUnknownProperty, Class: class, Property: name,
			Path: path, Value: raw, Message: "property is not declared"}
	}

	if isNull(raw) {
		if p.Nullable {
			return final{}, nil
		}
		return nil, &Error{Code: CodeUnsupportedCoercion, Class: class, Property: name,
			Path: path, Value: raw, Message: fmt.Sprintf("null is not a %s", p.Type)}
	}

	switch p.Type {
	case ir.TypeLink:
		return w.link(class, p, raw, path, depth)
	case ir.TypeList:
		return w.list(class, p, raw, path, depth)
	}

	v, err := coerceScalar(p.Type, raw)
	if err != nil {
		return nil, &Error{Code: CodeTypeMismatch, Class: class, Property: name,
			Path: path, Value: raw, Message: err.Error()}
	}
	return final{value: v}, nil
}

// link plans a to-one relationship value: an existing handle of the target
// class, or a keyed description of a new one.
func (w *walker) link(class string, p ir.PropertySpec, raw any, path string, depth int) (plan, error) {
	mismatch := func(msg string, cause error) error {
		return &Error{Code: CodeTypeMismatch, Class: class, Property: p.Name,
			Path: path, Value: raw, Message: msg, Err: cause}
	}

	if e, ok := raw.(*ir.Entity); ok {
		stored, err := w.sc.ClassOf(w.ctx, e)
		if err != nil {
			return nil, mismatch(fmt.Sprintf("cannot resolve entity %s", e.ID), err)
		}
		if stored != p.Target {
			return nil, mismatch(fmt.Sprintf("entity %s is a %s, not a %s", e.ID, stored, p.Target), nil)
		}
		if e.Class != stored {
			return final{value: &ir.Entity{ID: e.ID, Class: stored, Seq: e.Seq, Fields: e.Fields}}, nil
		}
		return final{value: e}, nil
	}

	desc, id, ok := keyed(raw)
	if !ok {
		return nil, mismatch(fmt.Sprintf("cannot use %T as %s", raw, p.Target), nil)
	}
	if depth+1 > w.s.maxDepth {
		return nil, &Error{Code: CodeDepthExceeded, Class: class, Property: p.Name, Path: path,
			Message: fmt.Sprintf("descriptions nest deeper than %d", w.s.maxDepth)}
	}
	if w.active[id] {
		return nil, &Error{Code: CodeCyclicInput, Class: class, Property: p.Name, Path: path,
			Message: "description contains itself"}
	}
	return w.entity(p.Target, desc, id, path, depth+1)
}

// list plans a to-many relationship value. The result is always a new
// collection of the target class unless raw already is one.
func (w *walker) list(class string, p ir.PropertySpec, raw any, path string, depth int) (plan, error) {
	if c, ok := raw.(*collection.Collection); ok {
		if c.ElementClass() != p.Target {
			return nil, &Error{Code: CodeTypeMismatch, Class: class, Property: p.Name, Path: path, Value: raw,
				Message: fmt.Sprintf("collection of %q is not a list of %s", c.ElementClass(), p.Target)}
		}
		// The collection only checks the class its members claim.
		for i, e := range c.Slice() {
			stored, err := w.sc.ClassOf(w.ctx, e)
			if err != nil {
				return nil, &Error{Code: CodeTypeMismatch, Class: class, Property: p.Name,
					Path: fmt.Sprintf("%s[%d]", path, i), Value: e,
					Message: fmt.Sprintf("cannot resolve entity %s", e.ID), Err: err}
			}
			if stored != p.Target {
				return nil, &Error{Code: CodeTypeMismatch, Class: class, Property: p.Name,
					Path: fmt.Sprintf("%s[%d]", path, i), Value: e,
					Message: fmt.Sprintf("entity %s is a %s, not a %s", e.ID, stored, p.Target)}
			}
		}
		return final{value: c}, nil
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &Error{Code: CodeTypeMismatch, Class: class, Property: p.Name, Path: path, Value: raw,
			Message: fmt.Sprintf("cannot use %T as [%s]", raw, p.Target)}
	}

	l := &pendingList{target: p.Target, items: make([]plan, 0, rv.Len())}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		elemPath := fmt.Sprintf("%s[%d]", path, i)
		if isNull(elem) {
			return nil, &Error{Code: CodeTypeMismatch, Class: class, Property: p.Name, Path: elemPath,
				Value: elem, Message: "list elements cannot be null"}
		}
		item, err := w.link(class, p, elem, elemPath, depth)
		if err != nil {
			return nil, err
		}
		l.items = append(l.items, item)
	}
	return l, nil
}

// keyed returns raw as a keyed description when it is a map with string
// keys, together with the map's identity.
func keyed(raw any) (map[string]any, uintptr, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, reflect.ValueOf(m).Pointer(), true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, 0, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, rv.Pointer(), true
}

// isNull reports untyped nil, ir.IRNull and typed nil handles.
func isNull(v any) bool {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return true
	case *ir.Entity:
		return val == nil
	case *collection.Collection:
		return val == nil
	default:
		return false
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
