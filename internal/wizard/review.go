package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/roach88/avwizard/internal/record"
	"github.com/roach88/avwizard/internal/store"
)

// ReviewData is everything the wizard has saved. Absent config records are
// nil and render as null.
type ReviewData struct {
	Global       store.Document   `json:"global"`
	Integrations store.Document   `json:"integrations"`
	Agents       store.Document   `json:"agents"`
	Optimization store.Document   `json:"optimization"`
	Recipes      []store.Document `json:"recipes"`
}

// ReviewData reads the four config records and every recipe. Each read is
// independent: a failed read leaves its field empty and the others are
// still returned alongside the joined error.
func (p *Pages) ReviewData(ctx context.Context) (ReviewData, error) {
	var (
		data ReviewData
		errs []error
	)
	for _, slot := range []struct {
		id  string
		dst *store.Document
	}{
		{record.ConfigGlobal, &data.Global},
		{record.ConfigIntegrations, &data.Integrations},
		{record.ConfigAgents, &data.Agents},
		{record.ConfigOptimization, &data.Optimization},
	} {
		doc, _, err := p.store.Get(ctx, record.CollectionConfig, slot.id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*slot.dst = doc
	}

	recipes, err := p.store.All(ctx, record.CollectionRecipes)
	if err != nil {
		errs = append(errs, err)
		recipes = []store.Document{}
	}
	// The store has no order; sort here so the dump is stable between renders.
	slices.SortFunc(recipes, func(a, b store.Document) int {
		return strings.Compare(a.ID(), b.ID())
	})
	data.Recipes = recipes

	return data, errors.Join(errs...)
}

// ReviewJSON renders ReviewData as indented JSON with a trailing newline.
func (p *Pages) ReviewJSON(ctx context.Context) ([]byte, error) {
	data, readErr := p.ReviewData(ctx)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), readErr
}

func (p *Pages) renderReview(ctx context.Context) (View, error) {
	out, err := p.ReviewJSON(ctx)
	if out == nil {
		return View{}, err
	}
	return View{Body: string(out)}, err
}
