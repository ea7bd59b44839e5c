package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/schemata/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoClasses           = "E100" // at least one class required
	ErrInvalidClassName    = "E101" // class name format
	ErrInvalidPropertyName = "E102" // property name format
	ErrDuplicateName       = "E103" // duplicate class or property name
	ErrInvalidFieldType    = "E104" // invalid type string
	ErrFloatTypeForbidden  = "E105" // float types not allowed
	ErrMissingTarget       = "E106" // link/list without target
	ErrTargetOnScalar      = "E107" // scalar property with target
	ErrUnknownTargetClass  = "E108" // target class not declared
	ErrInvalidPrimaryKey   = "E109" // primary key not a usable property
	ErrNullableList        = "E110" // list properties are never null
)

// ValidationError represents a class table validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var (
	classNamePattern    = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
	propertyNamePattern = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)
)

// Validate checks a compiled class table.
// Returns all errors found (does not fail-fast).
func Validate(classes []ir.ClassSpec) []ValidationError {
	var errs []ValidationError

	if len(classes) == 0 {
		return []ValidationError{{
			Field:   "class",
			Message: "at least one class is required",
			Code:    ErrNoClasses,
		}}
	}

	declared := make(map[string]bool, len(classes))
	for _, c := range classes {
		declared[c.Name] = true
	}

	seen := make(map[string]bool, len(classes))
	for _, c := range classes {
		if seen[c.Name] {
			errs = append(errs, ValidationError{
				Field:   "class." + c.Name,
				Message: fmt.Sprintf("duplicate class name: %q", c.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[c.Name] = true
		errs = append(errs, validateClass(c, declared)...)
	}

	return errs
}

func validateClass(c ir.ClassSpec, declared map[string]bool) []ValidationError {
	var errs []ValidationError
	base := "class." + c.Name

	if !classNamePattern.MatchString(c.Name) {
		errs = append(errs, ValidationError{
			Field:   base,
			Message: fmt.Sprintf("class name %q must be UpperCamelCase", c.Name),
			Code:    ErrInvalidClassName,
		})
	}

	props := make(map[string]ir.PropertySpec, len(c.Properties))
	for _, p := range c.Properties {
		field := base + ".property." + p.Name

		if _, dup := props[p.Name]; dup {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate property name: %q", p.Name),
				Code:    ErrDuplicateName,
			})
		}
		props[p.Name] = p

		if !propertyNamePattern.MatchString(p.Name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("property name %q must be lowerCamelCase", p.Name),
				Code:    ErrInvalidPropertyName,
			})
		}

		errs = append(errs, validatePropertyType(p, field, declared)...)
	}

	if c.PrimaryKey != "" {
		errs = append(errs, validatePrimaryKey(c, props, base)...)
	}

	return errs
}

// validatePropertyType validates a type string and its relationship target.
func validatePropertyType(p ir.PropertySpec, field string, declared map[string]bool) []ValidationError {
	if isFloatType(string(p.Type)) {
		return []ValidationError{{
			Field:   field + ".type",
			Message: fmt.Sprintf("float type forbidden for property %q, use int instead", p.Name),
			Code:    ErrFloatTypeForbidden,
		}}
	}
	if !ir.ValidTypes[p.Type] {
		return []ValidationError{{
			Field:   field + ".type",
			Message: fmt.Sprintf("invalid type %q for property %q", p.Type, p.Name),
			Code:    ErrInvalidFieldType,
		}}
	}

	var errs []ValidationError
	switch {
	case p.Type.IsRelationship() && p.Target == "":
		errs = append(errs, ValidationError{
			Field:   field + ".target",
			Message: fmt.Sprintf("%s property %q needs a target class", p.Type, p.Name),
			Code:    ErrMissingTarget,
		})
	case p.Type.IsRelationship() && !declared[p.Target]:
		errs = append(errs, ValidationError{
			Field:   field + ".target",
			Message: fmt.Sprintf("target class %q is not declared", p.Target),
			Code:    ErrUnknownTargetClass,
		})
	case !p.Type.IsRelationship() && p.Target != "":
		errs = append(errs, ValidationError{
			Field:   field + ".target",
			Message: fmt.Sprintf("%s property %q cannot have a target", p.Type, p.Name),
			Code:    ErrTargetOnScalar,
		})
	}

	if p.Type == ir.TypeList && p.Nullable {
		errs = append(errs, ValidationError{
			Field:   field + ".nullable",
			Message: fmt.Sprintf("list property %q cannot be nullable; an empty list stands for none", p.Name),
			Code:    ErrNullableList,
		})
	}

	return errs
}

func validatePrimaryKey(c ir.ClassSpec, props map[string]ir.PropertySpec, base string) []ValidationError {
	field := base + ".primary_key"
	p, ok := props[c.PrimaryKey]
	switch {
	case !ok:
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("primary key %q is not a property", c.PrimaryKey),
			Code:    ErrInvalidPrimaryKey,
		}}
	case p.Type != ir.TypeString && p.Type != ir.TypeInt:
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("primary key %q must be string or int, not %s", c.PrimaryKey, p.Type),
			Code:    ErrInvalidPrimaryKey,
		}}
	case p.Nullable:
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("primary key %q cannot be nullable", c.PrimaryKey),
			Code:    ErrInvalidPrimaryKey,
		}}
	}
	return nil
}

// isFloatType checks if a type string represents a float type.
func isFloatType(t string) bool {
	floatTypes := map[string]bool{
		"float":   true,
		"float32": true,
		"float64": true,
		"double":  true,
		"number":  true,
	}
	return floatTypes[t]
}
