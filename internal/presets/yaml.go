package presets

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/roach88/avwizard/internal/record"
)

// IDFunc generates ids for imported recipes that don't carry one.
type IDFunc func() string

// NewID returns a time-ordered UUIDv7 string.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// DecodeYAML parses recipes from YAML. The document may hold one recipe
// mapping, a sequence of them, or several "---" separated documents. Each
// recipe is validated against #Recipe; the first invalid one fails the whole
// import so nothing half-valid reaches the store.
//
// Recipes without an id get one from newID (NewID if nil).
func DecodeYAML(data []byte, newID IDFunc) ([]record.Recipe, error) {
	if newID == nil {
		newID = NewID
	}

	raws, err := decodeDocuments(data)
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, errors.New("no recipes found")
	}

	ctx, v, err := compileSchema()
	if err != nil {
		return nil, err
	}
	schema := v.LookupPath(cue.ParsePath("#Recipe"))

	recipes := make([]record.Recipe, 0, len(raws))
	seen := make(map[string]int, len(raws))
	for i, raw := range raws {
		if id, ok := raw["id"]; !ok || id == nil || id == "" {
			raw["id"] = newID()
		}
		r, err := validate(ctx, schema, i, raw)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[r.ID]; dup {
			return nil, &ValidationError{Index: i, ID: r.ID, Message: fmt.Sprintf("duplicate id (also recipe %d)", prev)}
		}
		seen[r.ID] = i
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func decodeDocuments(data []byte) ([]map[string]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var out []map[string]any
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}

		switch v := doc.(type) {
		case nil:
			continue
		case map[string]any:
			out = append(out, v)
		case []any:
			for i, item := range v {
				m, ok := item.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("parse yaml: item %d is %T, want a mapping", i, item)
				}
				out = append(out, m)
			}
		default:
			return nil, fmt.Errorf("parse yaml: document is %T, want a mapping or a list", doc)
		}
	}
	return out, nil
}
