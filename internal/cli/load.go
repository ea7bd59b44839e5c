package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/fixture"
	"github.com/roach88/schemata/internal/ir"
	"github.com/roach88/schemata/internal/sanitize"
	"github.com/roach88/schemata/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	DB string // database path

	// IDs overrides the store's ID generator. Tests set it for stable output.
	IDs store.IDGenerator
}

// LoadSummary reports what a load wrote.
type LoadSummary struct {
	Roots   int            `json:"roots"`
	Counts  map[string]int `json:"counts"`
	Created ir.IRArray     `json:"created"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	return newLoadCommand(&LoadOptions{RootOptions: rootOpts})
}

func newLoadCommand(opts *LoadOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <schema-dir> <fixtures.yaml>...",
		Short: "Load fixture files into a store",
		Long: `Build every fixture through the sanitizer and persist the entities.

All files share one write scope: if any value is rejected, nothing from any
file is written.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd.Context(), opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(ctx context.Context, opts *LoadOptions, schemaDir string, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, errs := loadSchema(schemaDir, compiler.LoadModeFailFast)
	if len(errs) > 0 {
		return outputErrors(formatter, "Loading schema failed", errs, ExitCommandError)
	}

	docs := make([]*fixture.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := fixture.Load(path)
		if err != nil {
			return outputErrors(formatter, "Reading fixtures failed: "+path,
				[]error{&codedError{Code: ErrCodeFixture, Err: err}}, ExitFailure)
		}
		docs = append(docs, doc)
	}

	logger := formatter.Logger()
	storeOpts := []store.Option{store.WithLogger(logger)}
	if opts.IDs != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDs))
	}
	st, err := store.Open(opts.DB, loaded.Schema, storeOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	s := sanitize.New(loaded.Schema, sanitize.WithLogger(logger))
	var created []*ir.Entity
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		for i, doc := range docs {
			formatter.VerboseLog("Applying %d fixture(s) from %s", len(doc.Fixtures), paths[i])
			entities, err := fixture.Apply(ctx, doc, s, tx)
			if err != nil {
				return fmt.Errorf("%s: %w", paths[i], err)
			}
			created = append(created, entities...)
		}
		return nil
	})
	if err != nil {
		exitCode := ExitFailure
		var sanErr *sanitize.Error
		if !errors.As(err, &sanErr) && !isStoreRejection(err) {
			exitCode = ExitCommandError
		}
		return outputErrors(formatter, "Load failed, nothing was written", []error{err}, exitCode)
	}

	summary, err := summarize(ctx, st, created)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading store", err)
	}
	return outputLoadSuccess(formatter, summary, loaded.Schema.Classes())
}

// isStoreRejection reports whether err is the store refusing a value rather
// than the database failing.
func isStoreRejection(err error) bool {
	var fieldErr *store.FieldError
	return errors.As(err, &fieldErr) ||
		errors.Is(err, store.ErrEntityNotFound) ||
		errors.Is(err, store.ErrUnknownClass)
}

// summarize counts the committed entities per class and renders the roots
// that were created.
func summarize(ctx context.Context, st *store.Store, created []*ir.Entity) (*LoadSummary, error) {
	summary := &LoadSummary{
		Roots:   len(created),
		Counts:  make(map[string]int),
		Created: ir.IRArray{},
	}
	for _, class := range st.Schema().Classes() {
		n, err := st.Count(ctx, class)
		if err != nil {
			return nil, err
		}
		summary.Counts[class] = n
	}
	for _, e := range created {
		doc, err := st.Document(e)
		if err != nil {
			return nil, err
		}
		summary.Created = append(summary.Created, doc)
	}
	return summary, nil
}

// outputLoadSuccess outputs the load summary.
func outputLoadSuccess(formatter *OutputFormatter, summary *LoadSummary, classes []string) error {
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	formatter.Printf("✓ Loaded %d root entity(ies)\n\n", summary.Roots)
	formatter.Println("Store contents:")
	for _, class := range classes {
		formatter.Printf("  %s: %d\n", class, summary.Counts[class])
	}
	return nil
}
