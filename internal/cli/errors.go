package cli

import (
	"errors"
	"io/fs"

	"github.com/roach88/avwizard/internal/presets"
	"github.com/roach88/avwizard/internal/store"
	"github.com/roach88/avwizard/internal/wizard"
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric            = "E001" // Generic/unknown error
	ErrCodeStorageUnavailable = "E002" // Database could not be opened
	ErrCodeStorage            = "E003" // Database operation failed
	ErrCodeInvalidInput       = "E004" // Form value rejected
	ErrCodeNotFound           = "E005" // Input file not found
	ErrCodeInvalidRecipe      = "E006" // Recipe file failed validation
	ErrCodeWriteFailed        = "E007" // Output file could not be written
	ErrCodeRender             = "E008" // Page failed to render
	ErrCodeConfig             = "E009" // Configuration invalid
)

// classify maps an error to its output code and exit code.
func classify(err error) (string, int) {
	var (
		inputErr  *wizard.InputError
		recipeErr *presets.ValidationError
	)
	switch {
	case store.IsUnavailable(err):
		return ErrCodeStorageUnavailable, ExitCommandError
	case errors.As(err, &inputErr):
		return ErrCodeInvalidInput, ExitFailure
	case errors.As(err, &recipeErr):
		return ErrCodeInvalidRecipe, ExitFailure
	case errors.Is(err, store.ErrUnknownCollection), errors.Is(err, store.ErrMissingID):
		return ErrCodeInvalidInput, ExitFailure
	case errors.Is(err, store.ErrStorage):
		return ErrCodeStorage, ExitCommandError
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound, ExitCommandError
	case wizard.IsRenderError(err):
		return ErrCodeRender, ExitFailure
	}
	return ErrCodeGeneric, ExitFailure
}

// fail reports err through the formatter and returns the ExitError the
// command should return.
func fail(f *OutputFormatter, message string, err error) error {
	code, exit := classify(err)
	_ = f.Error(code, message+": "+err.Error(), nil)
	return WrapExitError(exit, message, err)
}
