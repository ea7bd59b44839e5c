package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schemata/internal/ir"
)

func TestCompileClassBasic(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		class: Film: {
			primary_key: "remoteId"
			property: {
				remoteId: { type: "string" }
				episode:  { type: "int", nullable: true }
				director: "string"
			}
		}
	`)

	require.NoError(t, v.Err())
	spec, err := CompileClass(v.LookupPath(cue.ParsePath("class.Film")))
	require.NoError(t, err)

	assert.Equal(t, "Film", spec.Name)
	assert.Equal(t, "remoteId", spec.PrimaryKey)
	assert.Equal(t, []ir.PropertySpec{
		{Name: "remoteId", Type: ir.TypeString},
		{Name: "episode", Type: ir.TypeInt, Nullable: true},
		{Name: "director", Type: ir.TypeString},
	}, spec.Properties, "declaration order is kept")
}

func TestCompileClassRelationships(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		class: Festival: property: {
			films:   { type: "list", target: "Film" }
			opening: { type: "link", target: "Screening", nullable: true }
		}
	`)

	spec, err := CompileClass(v.LookupPath(cue.ParsePath("class.Festival")))
	require.NoError(t, err)
	require.Len(t, spec.Properties, 2)
	assert.Equal(t, ir.PropertySpec{Name: "films", Type: ir.TypeList, Target: "Film"}, spec.Properties[0])
	assert.Equal(t, ir.PropertySpec{Name: "opening", Type: ir.TypeLink, Target: "Screening", Nullable: true}, spec.Properties[1])
}

func TestCompileClassErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"no properties", `class: X: { primary_key: "id" }`, "property"},
		{"empty properties", `class: X: property: {}`, "property"},
		{"missing type", `class: X: property: a: { nullable: true }`, "property.a.type"},
		{"type not string", `class: X: property: a: { type: 3 }`, "property.a.type"},
		{"nullable not bool", `class: X: property: a: { type: "int", nullable: "yes" }`, "property.a.nullable"},
		{"target not string", `class: X: property: a: { type: "link", target: 1 }`, "property.a.target"},
		{"primary key not string", `class: X: { primary_key: 1, property: a: "int" }`, "primary_key"},
		{"property is a number", `class: X: property: a: 1`, "property.a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := cuecontext.New()
			v := ctx.CompileString(tt.src)
			require.NoError(t, v.Err())

			_, err := CompileClass(v.LookupPath(cue.ParsePath("class.X")))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileClassesDeclarationOrder(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		class: Screening: property: venue: "string"
		class: Film: property: remoteId: "string"
	`)

	var classes []ir.ClassSpec
	errs := CompileClasses(v, LoadModeCollectAll, &classes)
	require.Empty(t, errs)
	require.Len(t, classes, 2)
	assert.Equal(t, "Screening", classes[0].Name)
	assert.Equal(t, "Film", classes[1].Name)
}

func TestCompileClassesCollectAll(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`
		class: A: property: {}
		class: B: property: {}
		class: C: property: c: "string"
	`)

	var classes []ir.ClassSpec
	errs := CompileClasses(v, LoadModeCollectAll, &classes)
	assert.Len(t, errs, 2)
	assert.Len(t, classes, 1)

	classes = nil
	errs = CompileClasses(v, LoadModeFailFast, &classes)
	assert.Len(t, errs, 1)
}
