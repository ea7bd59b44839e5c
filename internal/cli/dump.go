package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	DB      string   // database path
	Classes []string // restrict the dump to these classes
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <schema-dir>",
		Short: "Print committed entities as canonical JSON",
		Long: `Print every committed entity as one line of canonical JSON.

Classes are dumped in name order unless --class is given; entities within a
class in creation order. Two stores holding the same data dump identically.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringArrayVar(&opts.Classes, "class", nil, "class to dump (repeatable)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runDump(ctx context.Context, opts *DumpOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, errs := loadSchema(schemaDir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return outputErrors(formatter, "Loading schema failed", errs, ExitCommandError)
	}
	for _, class := range opts.Classes {
		if !loaded.Schema.HasClass(class) {
			msg := fmt.Sprintf("class %q is not declared", class)
			_ = formatter.Error(ErrCodeNoSuchClass, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
	}

	st, err := store.Open(opts.DB, loaded.Schema, store.WithLogger(formatter.Logger()))
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	docs, err := st.Snapshot(ctx, opts.Classes...)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading store", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(docs)
	}
	for _, doc := range docs {
		if err := formatter.Canonical(doc); err != nil {
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	}
	return nil
}
