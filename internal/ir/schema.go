package ir

// Type is the declared type of a class property.
type Type string

const (
	TypeString Type = "string"
	TypeInt    Type = "int"
	TypeBool   Type = "bool"
	TypeDate   Type = "date"
	TypeData   Type = "data"
	TypeLink   Type = "link" // to-one relationship
	TypeList   Type = "list" // to-many relationship, ordered
)

// ValidTypes lists every declarable property type.
var ValidTypes = map[Type]bool{
	TypeString: true,
	TypeInt:    true,
	TypeBool:   true,
	TypeDate:   true,
	TypeData:   true,
	TypeLink:   true,
	TypeList:   true,
}

// IsRelationship reports whether values of this type are persisted entities
// rather than scalars.
func (t Type) IsRelationship() bool {
	return t == TypeLink || t == TypeList
}

// Kind separates relationship properties from scalar ones.
type Kind int

const (
	KindScalar Kind = iota
	KindRelationship
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRelationship:
		return "relationship"
	default:
		return "unknown"
	}
}

// ClassSpec is the compiled declaration of one persisted class.
type ClassSpec struct {
	Name       string         `json:"name"`
	PrimaryKey string         `json:"primary_key,omitempty"`
	Properties []PropertySpec `json:"properties"`
}

// PropertySpec declares one property of a class.
type PropertySpec struct {
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Target   string `json:"target,omitempty"` // related class, relationships only
	Nullable bool   `json:"nullable,omitempty"`
}

// Kind reports whether the property is a relationship or a scalar.
func (p PropertySpec) Kind() Kind {
	if p.Type.IsRelationship() {
		return KindRelationship
	}
	return KindScalar
}

// Descriptor returns the class-level descriptor of a relationship property.
// Scalars have none.
func (p PropertySpec) Descriptor() (TypeDescriptor, bool) {
	if !p.Type.IsRelationship() {
		return TypeDescriptor{}, false
	}
	return TypeDescriptor{Type: p.Type, Class: p.Target}, true
}

// TypeDescriptor names the class a relationship property points at, and
// whether it holds one entity or an ordered collection of them.
type TypeDescriptor struct {
	Type  Type   `json:"type"`
	Class string `json:"class"`
}

// String renders the descriptor as "Film" or "[Film]".
func (d TypeDescriptor) String() string {
	if d.Type == TypeList {
		return "[" + d.Class + "]"
	}
	return d.Class
}
