package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/testutil"
)

func TestValidateFilmClasses(t *testing.T) {
	errs := Validate(testutil.FilmClasses())
	assert.Empty(t, errs, "valid table should have no errors")
}

func TestValidateEmpty(t *testing.T) {
	errs := Validate(nil)
	assert.Len(t, errs, 1)
	assert.Equal(t, ErrNoClasses, errs[0].Code)
}

func TestValidateErrorCodes(t *testing.T) {
	tests := []struct {
		name    string
		classes []ir.ClassSpec
		code    string
	}{
		{
			name:    "class name",
			classes: []ir.ClassSpec{{Name: "film", Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeString}}}},
			code:    ErrInvalidClassName,
		},
		{
			name:    "property name",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{{Name: "Title", Type: ir.TypeString}}}},
			code:    ErrInvalidPropertyName,
		},
		{
			name: "duplicate class",
			classes: []ir.ClassSpec{
				{Name: "Film", Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeString}}},
				{Name: "Film", Properties: []ir.PropertySpec{{Name: "b", Type: ir.TypeString}}},
			},
			code: ErrDuplicateName,
		},
		{
			name: "duplicate property",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{
				{Name: "a", Type: ir.TypeString}, {Name: "a", Type: ir.TypeInt},
			}}},
			code: ErrDuplicateName,
		},
		{
			name:    "invalid type",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{{Name: "a", Type: "uuid"}}}},
			code:    ErrInvalidFieldType,
		},
		{
			name:    "float",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{{Name: "rating", Type: "float"}}}},
			code:    ErrFloatTypeForbidden,
		},
		{
			name:    "missing target",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeLink}}}},
			code:    ErrMissingTarget,
		},
		{
			name:    "target on scalar",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeString, Target: "Film"}}}},
			code:    ErrTargetOnScalar,
		},
		{
			name:    "unknown target",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeList, Target: "Person"}}}},
			code:    ErrUnknownTargetClass,
		},
		{
			name: "primary key missing",
			classes: []ir.ClassSpec{{Name: "Film", PrimaryKey: "id",
				Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeString}}}},
			code: ErrInvalidPrimaryKey,
		},
		{
			name: "primary key type",
			classes: []ir.ClassSpec{{Name: "Film", PrimaryKey: "a",
				Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeDate}}}},
			code: ErrInvalidPrimaryKey,
		},
		{
			name: "primary key nullable",
			classes: []ir.ClassSpec{{Name: "Film", PrimaryKey: "a",
				Properties: []ir.PropertySpec{{Name: "a", Type: ir.TypeString, Nullable: true}}}},
			code: ErrInvalidPrimaryKey,
		},
		{
			name: "nullable list",
			classes: []ir.ClassSpec{{Name: "Film", Properties: []ir.PropertySpec{
				{Name: "sequels", Type: ir.TypeList, Target: "Film", Nullable: true},
			}}},
			code: ErrNullableList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.classes)
			if assert.Len(t, errs, 1, "%v", errs) {
				assert.Equal(t, tt.code, errs[0].Code)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	errs := Validate([]ir.ClassSpec{{
		Name: "film",
		Properties: []ir.PropertySpec{
			{Name: "rating", Type: "float64"},
			{Name: "next", Type: ir.TypeLink, Target: "Sequel"},
		},
	}})

	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.ElementsMatch(t, []string{ErrInvalidClassName, ErrFloatTypeForbidden, ErrUnknownTargetClass}, codes)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Field: "class.Film", Message: "bad", Code: ErrInvalidClassName}
	assert.Equal(t, "[E101] class.Film: bad", e.Error())

	e.Line = 3
	assert.Equal(t, "[E101] line 3: class.Film: bad", e.Error())
}
