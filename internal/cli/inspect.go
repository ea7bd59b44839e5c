package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/ir"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Type   string // answer IsProperty for this declared type
	Target string // answer IsRelationship for this target class
}

// InspectResult describes one property, or one class when Property is empty.
type InspectResult struct {
	Class      string            `json:"class"`
	PrimaryKey string            `json:"primary_key,omitempty"`
	Property   *ir.PropertySpec  `json:"property,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Descriptor string            `json:"descriptor,omitempty"`
	Properties []ir.PropertySpec `json:"properties,omitempty"`
	Answer     *bool             `json:"answer,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <schema-dir> <class> [property]",
		Short: "Introspect the declared type of a class or property",
		Long: `Introspect a compiled class table.

With only a class, lists its properties. With a property, prints its declared
type, nullability and, for relationships, the class-level descriptor.

--type T asks whether the property is declared with type T.
--target C asks whether the property is a relationship to class C.
A negative answer exits with code 1.`,
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			property := ""
			if len(args) == 3 {
				property = args[2]
			}
			return runInspect(opts, args[0], args[1], property, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "check the declared type (string|int|bool|date|data|link|list)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "check the relationship target class")

	return cmd
}

func runInspect(opts *InspectOptions, schemaDir, class, property string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if property == "" && (opts.Type != "" || opts.Target != "") {
		_ = formatter.Error(compiler.ErrCodeGeneric, "--type and --target need a property", nil)
		return NewExitError(ExitCommandError, "--type and --target need a property")
	}
	if opts.Type != "" && !ir.ValidTypes[ir.Type(opts.Type)] {
		msg := fmt.Sprintf("unknown type %q", opts.Type)
		_ = formatter.Error(compiler.ErrCodeGeneric, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	loaded, errs := loadSchema(schemaDir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return outputErrors(formatter, "Loading schema failed", errs, ExitCommandError)
	}
	sch := loaded.Schema

	spec, ok := sch.Class(class)
	if !ok {
		msg := fmt.Sprintf("class %q is not declared", class)
		_ = formatter.Error(ErrCodeNoSuchClass, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	result := InspectResult{Class: class, PrimaryKey: spec.PrimaryKey}
	if property == "" {
		result.Properties = spec.Properties
		return outputInspect(formatter, result)
	}

	p, ok := sch.Property(class, property)
	if !ok {
		msg := fmt.Sprintf("%s has no property %q", class, property)
		_ = formatter.Error(ErrCodeNoSuchClass, msg, nil)
		return NewExitError(ExitFailure, msg)
	}
	result.Property = &p
	result.Kind = p.Kind().String()
	if d, ok := sch.TypeOfProperty(class, property); ok {
		result.Descriptor = d.String()
	}

	if opts.Type != "" || opts.Target != "" {
		answer := true
		if opts.Type != "" {
			answer = answer && sch.IsProperty(class, property, ir.Type(opts.Type))
		}
		if opts.Target != "" {
			answer = answer && sch.IsRelationship(class, property, opts.Target)
		}
		result.Answer = &answer
	}

	if err := outputInspect(formatter, result); err != nil {
		return err
	}
	if result.Answer != nil && !*result.Answer {
		return NewExitError(ExitFailure, fmt.Sprintf("%s.%s does not match", class, property))
	}
	return nil
}

// outputInspect prints an inspect result.
func outputInspect(formatter *OutputFormatter, r InspectResult) error {
	if formatter.Format == "json" {
		return formatter.Success(r)
	}

	if r.Property == nil {
		header := r.Class
		if r.PrimaryKey != "" {
			header += " (primary key " + r.PrimaryKey + ")"
		}
		formatter.Println(header)
		for _, p := range r.Properties {
			formatter.Printf("  %s\n", describeProperty(p))
		}
		return nil
	}

	formatter.Printf("%s.%s\n", r.Class, describeProperty(*r.Property))
	formatter.Printf("  kind: %s\n", r.Kind)
	if r.Descriptor != "" {
		formatter.Printf("  descriptor: %s\n", r.Descriptor)
	}
	if r.Answer != nil {
		if *r.Answer {
			formatter.Println("✓ yes")
		} else {
			formatter.Println("✗ no")
		}
	}
	return nil
}

// describeProperty renders a property as "name: type" with its target and
// nullability, e.g. "relatedFilm: link Film?".
func describeProperty(p ir.PropertySpec) string {
	s := p.Name + ": " + string(p.Type)
	if p.Target != "" {
		s += " " + p.Target
	}
	if p.Nullable {
		s += "?"
	}
	return s
}
