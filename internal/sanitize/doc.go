// Package sanitize converts untyped caller input into the exact values the
// store accepts for a declared property.
//
// Sanitization runs in two phases. Planning walks the raw value against the
// schema, applies scalar coercions, checks existing entity handles and
// records which related entities must be created. Every sanitization error
// is raised while planning, before anything is written. Applying then
// creates the pending entities bottom-up through the caller's StoreContext.
//
// Values already in sanitized form pass through unchanged, so sanitizing a
// sanitized value is a no-op:
//
//	string     string
//	int        int64
//	bool       bool
//	date       time.Time (UTC)
//	data       []byte
//	link       *ir.Entity
//	list       *collection.Collection
//
// The sanitizer never opens, commits or rolls back a write scope. When
// applying fails, the caller rolls back the scope it supplied.
package sanitize
