package ir

// Entity is a live handle to a persisted object.
// Entities are created by the store, never constructed by callers that write.
//
// Fields hold sanitized values only: string, int64, bool, time.Time, []byte,
// *Entity, a collection, or nil for a nullable property. A handle returned by
// a read may arrive with Fields unset; identity is still complete.
type Entity struct {
	ID     string
	Class  string
	Seq    int64
	Fields map[string]any
}

// Ref returns an unloaded handle carrying only the identity of e.
func (e *Entity) Ref() *Entity {
	if e == nil {
		return nil
	}
	return &Entity{ID: e.ID, Class: e.Class, Seq: e.Seq}
}

// Get returns the field value for name, or nil when unset.
func (e *Entity) Get(name string) any {
	if e == nil || e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}

// SameEntity reports whether a and b denote the same persisted row.
// Equal field values never make two entities the same.
func SameEntity(a, b *Entity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Class == b.Class
}
