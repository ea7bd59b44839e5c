package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/fixture"
	"github.com/roach88/schemata/internal/sanitize"
	"github.com/roach88/schemata/internal/store"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Classes  int      `json:"classes"`
	Fixtures []string `json:"fixtures,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <schema-dir> [fixtures.yaml...]",
		Short: "Validate a schema and dry-run fixtures against it",
		Long: `Validate CUE class declarations and, optionally, fixture files.

Each fixture file is built through the sanitizer inside a throwaway
in-memory store whose write scope is always rolled back. Nothing is
persisted.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), rootOpts, args[0], args[1:], cmd)
		},
	}

	return cmd
}

func runValidate(ctx context.Context, opts *RootOptions, schemaDir string, fixtures []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, errs := loadSchema(schemaDir, compiler.LoadModeCollectAll)
	if loaded.Result == nil {
		// Unreadable directories are command-level errors (exit code 2)
		return outputErrors(formatter, "Validation failed", errs, ExitCommandError)
	}
	if len(errs) > 0 {
		return outputErrors(formatter, fmt.Sprintf("Validation failed with %d error(s)", len(errs)), errs, ExitFailure)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.Result.FileCount, schemaDir)

	logger := formatter.Logger()
	for _, path := range fixtures {
		formatter.VerboseLog("Dry-running fixtures: %s", path)
		if err := dryRun(ctx, loaded, path, logger); err != nil {
			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				_ = formatter.Error(ErrCodeStoreFailed, err.Error(), nil)
				return err
			}
			return outputErrors(formatter, "Fixture validation failed: "+path, []error{err}, ExitFailure)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:    true,
			Classes:  len(loaded.Result.Classes),
			Fixtures: fixtures,
		})
	}
	formatter.Println("✓ Schema valid")
	for _, path := range fixtures {
		formatter.Printf("✓ Fixtures valid: %s\n", path)
	}
	return nil
}

// dryRun builds every fixture in path against a scratch store and rolls the
// scope back. Store setup failures come back as *ExitError.
func dryRun(ctx context.Context, loaded *schemaLoad, path string, logger *slog.Logger) error {
	doc, err := fixture.Load(path)
	if err != nil {
		return &codedError{Code: ErrCodeFixture, Err: err}
	}

	st, err := store.Open(":memory:", loaded.Schema, store.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "opening scratch store", err)
	}
	defer st.Close()

	tx, err := st.Begin(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening write scope", err)
	}
	defer tx.Rollback()

	s := sanitize.New(loaded.Schema, sanitize.WithLogger(logger))
	if _, err := fixture.Apply(ctx, doc, s, tx); err != nil {
		return err
	}
	return nil
}
