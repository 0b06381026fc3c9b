// Package presets holds the built-in recipe library and validates recipes
// imported from YAML files.
//
// The library and its schema live in presets.cue. Both built-in and imported
// recipes are unified with #Recipe, so a recipe that loads is a recipe the
// Recipes page can store.
package presets

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/avwizard/internal/record"
)

//go:embed presets.cue
var presetsCUE []byte

var (
	loadOnce sync.Once
	library  []record.Recipe
	loadErr  error
)

// Load returns the built-in presets in display order. The result is a fresh
// copy; callers may modify it.
func Load() ([]record.Recipe, error) {
	loadOnce.Do(func() {
		library, loadErr = compileLibrary()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	out := make([]record.Recipe, len(library))
	for i, r := range library {
		out[i] = clone(r)
	}
	return out, nil
}

// Lookup returns the preset with the given id.
func Lookup(id string) (record.Recipe, bool, error) {
	all, err := Load()
	if err != nil {
		return record.Recipe{}, false, err
	}
	for _, r := range all {
		if r.ID == id {
			return r, true, nil
		}
	}
	return record.Recipe{}, false, nil
}

// IDs returns the preset ids in display order.
func IDs() ([]string, error) {
	all, err := Load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return ids, nil
}

// compileSchema compiles presets.cue in a fresh context. cue.Context is not
// safe for concurrent use, so every caller gets its own.
func compileSchema() (*cue.Context, cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(presetsCUE, cue.Filename("presets.cue"))
	if err := v.Err(); err != nil {
		return nil, cue.Value{}, formatCUEError(err)
	}
	return ctx, v, nil
}

func compileLibrary() ([]record.Recipe, error) {
	_, v, err := compileSchema()
	if err != nil {
		return nil, err
	}

	list := v.LookupPath(cue.ParsePath("presets"))
	if err := list.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	data, err := list.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var recipes []record.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	seen := make(map[string]bool, len(recipes))
	for i := range recipes {
		if seen[recipes[i].ID] {
			return nil, fmt.Errorf("duplicate preset id %q", recipes[i].ID)
		}
		seen[recipes[i].ID] = true
		normalize(&recipes[i])
	}
	return recipes, nil
}

// ValidationError reports a recipe that does not satisfy #Recipe.
type ValidationError struct {
	Index   int // position in the imported document
	ID      string
	Message string
}

func (e *ValidationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("recipe %d (%s): %s", e.Index, e.ID, e.Message)
	}
	return fmt.Sprintf("recipe %d: %s", e.Index, e.Message)
}

// validate unifies raw with #Recipe and decodes the concrete result.
func validate(ctx *cue.Context, schema cue.Value, index int, raw map[string]any) (record.Recipe, error) {
	id, _ := raw["id"].(string)

	u := schema.Unify(ctx.Encode(raw))
	if err := u.Validate(cue.Concrete(true)); err != nil {
		return record.Recipe{}, &ValidationError{Index: index, ID: id, Message: formatCUEError(err).Error()}
	}

	data, err := u.MarshalJSON()
	if err != nil {
		return record.Recipe{}, &ValidationError{Index: index, ID: id, Message: err.Error()}
	}
	var r record.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return record.Recipe{}, fmt.Errorf("decode recipe %d: %w", index, err)
	}
	normalize(&r)
	return r, nil
}

func normalize(r *record.Recipe) {
	r.Name = record.CleanText(r.Name)
	r.Hypothesis = record.CleanText(r.Hypothesis)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Knobs == nil {
		r.Knobs = map[string]any{}
	}
}

// clone deep-copies r through JSON so callers can't mutate the shared library.
func clone(r record.Recipe) record.Recipe {
	data, err := json.Marshal(r)
	if err != nil {
		return r
	}
	var out record.Recipe
	if err := json.Unmarshal(data, &out); err != nil {
		return r
	}
	return out
}

// formatCUEError keeps the first CUE error, which carries the field path,
// and counts the rest.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	msg := errs[0].Error()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more errors)", msg, len(errs)-1)
	}
	return errors.New(msg)
}
