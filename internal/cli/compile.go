package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the compiled class table.
type CompilationResult struct {
	Classes    []ir.ClassSpec `json:"classes"`
	SchemaHash string         `json:"schema_hash"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <schema-dir>",
		Short: "Compile CUE class declarations to a class table",
		Long: `Compile CUE class declarations to a validated class table.

The compiler parses CUE files, validates the classes, and outputs the table
as JSON together with the schema hash stores record on first use.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, schemaDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, errs := loadSchema(schemaDir, compiler.LoadModeCollectAll)
	if len(errs) > 0 {
		// Compilation errors are command-level errors (exit code 2)
		return outputErrors(formatter, fmt.Sprintf("Compilation failed with %d error(s)", len(errs)), errs, ExitCommandError)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.Result.FileCount, schemaDir)
	for _, name := range loaded.Schema.Classes() {
		formatter.VerboseLog("Compiled class: %s", name)
	}

	hash, err := loaded.Schema.Hash()
	if err != nil {
		return outputErrors(formatter, "Compilation failed", []error{err}, ExitCommandError)
	}
	result := &CompilationResult{
		Classes:    loaded.Schema.Specs(),
		SchemaHash: hash,
	}

	if opts.Output != "" {
		if err := writeTableToFile(result, opts.Output); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	formatter.Printf("✓ Compiled %d class(es)\n\n", len(result.Classes))
	formatter.Println("Classes:")
	for _, c := range result.Classes {
		pk := ""
		if c.PrimaryKey != "" {
			pk = ", primary key " + c.PrimaryKey
		}
		relationships := 0
		for _, p := range c.Properties {
			if p.Type.IsRelationship() {
				relationships++
			}
		}
		formatter.Printf("  %s: %d property(ies), %d relationship(s)%s\n",
			c.Name, len(c.Properties), relationships, pk)
	}
	formatter.Printf("\nSchema hash: %s\n", result.SchemaHash)

	if outputFile != "" {
		formatter.Printf("Wrote class table to %s\n", outputFile)
	}
	return nil
}

// writeTableToFile writes the compilation result to a file.
func writeTableToFile(result *CompilationResult, filename string) error {
	// Use standard JSON with indentation for readability
	// (canonical JSON without indentation is used only for hashing)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling class table: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
