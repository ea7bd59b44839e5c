package cli

import (
	"errors"

	"github.com/roach88/schemata/internal/compiler"
	"github.com/roach88/schemata/internal/sanitize"
	"github.com/roach88/schemata/internal/schema"
	"github.com/roach88/schemata/internal/store"
)

// CLI error codes beyond the compiler's load codes (E001-E006).
const (
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStoreFailed = "E008" // Store open or write failure
	ErrCodeFixture     = "E009" // Fixture file invalid
	ErrCodeSanitize    = "E010" // Fixture value rejected by the sanitizer
	ErrCodeNoSuchClass = "E011" // Inspect target not declared
)

// codedError tags an error with the CLI error code it reports under.
type codedError struct {
	Code string
	Err  error
}

func (e *codedError) Error() string { return e.Err.Error() }

func (e *codedError) Unwrap() error { return e.Err }

// schemaLoad is the outcome of loading a schema directory.
type schemaLoad struct {
	Result *compiler.LoadResult
	Schema *schema.Schema
}

// loadSchema loads, compiles and validates the class table in dir.
// Errors are *compiler.LoadError, compiler.ValidationError or schema errors.
func loadSchema(dir string, mode compiler.LoadMode) (*schemaLoad, []error) {
	result, errs := compiler.LoadDir(dir, mode)
	if result == nil || len(errs) > 0 {
		return &schemaLoad{Result: result}, errs
	}

	for _, ve := range compiler.Validate(result.Classes) {
		errs = append(errs, ve)
		if mode == compiler.LoadModeFailFast {
			return &schemaLoad{Result: result}, errs
		}
	}
	if len(errs) > 0 {
		return &schemaLoad{Result: result}, errs
	}

	sch, err := schema.New(result.Classes)
	if err != nil {
		return &schemaLoad{Result: result}, []error{err}
	}
	return &schemaLoad{Result: result, Schema: sch}, nil
}

// errorCode extracts error code and message from an error.
func errorCode(err error) (string, string) {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.Code, err.Error()
	}
	var sanErr *sanitize.Error
	if errors.As(err, &sanErr) {
		return ErrCodeSanitize, err.Error()
	}
	var fieldErr *store.FieldError
	if errors.As(err, &fieldErr) || errors.Is(err, store.ErrEntityNotFound) || errors.Is(err, store.ErrUnknownClass) {
		return ErrCodeStoreFailed, err.Error()
	}
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var ve compiler.ValidationError
	if errors.As(err, &ve) {
		return ve.Code, ve.Field + ": " + ve.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.ErrCodeGeneric, compileErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// outputErrors reports errs and returns an ExitError with code.
func outputErrors(formatter *OutputFormatter, title string, errs []error, exitCode int) error {
	if formatter.Format == "json" {
		all := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := errorCode(err)
			all[i] = CLIError{Code: code, Message: message}
		}
		_ = formatter.Error(all[0].Code, all[0].Message, all)
		return NewExitError(exitCode, title)
	}

	formatter.Println("✗ " + title)
	formatter.Println("")
	for _, err := range errs {
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			formatter.Printf("%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		code, message := errorCode(err)
		formatter.Printf("  %s: %s\n\n", code, message)
	}
	return NewExitError(exitCode, title)
}
