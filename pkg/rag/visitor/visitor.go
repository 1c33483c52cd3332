// Package visitor implements the analytics-visit operation from spec.md
// section 6: given a (parent_id, child_id) cluster pair, resolve a
// dashboard route plus an LC-generated subtitle summary for the client to
// render once the main answer's TTS finishes playing.
package visitor

import (
	"context"
	"strings"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/catalog"
	"analytics-assistant-be/pkg/llm"
)

// LabelLookup resolves a cluster id to its human-readable label. Satisfied
// by *clusterindex.Index.
type LabelLookup interface {
	ParentLabel(id uint) string
	ChildLabel(id uint) string
}

// CatalogLookup resolves the products tagged for a cluster child, the same
// narrow interface pkg/report's Builder depends on.
type CatalogLookup interface {
	ForClusterChild(childID uint) []catalog.Product
}

// Result is the analytics-visit response.
type Result struct {
	URL        string
	Discussion string
}

type Visitor struct {
	catalog CatalogLookup
	labels  LabelLookup
	llm     *llm.Client
}

func New(cat CatalogLookup, labels LabelLookup, llmClient *llm.Client) *Visitor {
	return &Visitor{catalog: cat, labels: labels, llm: llmClient}
}

// Visit resolves the dashboard route for the pair from the first tagged
// product's RouteHint, and asks LC for a short spoken-subtitle summary of
// what that cluster covers. A pair with no tagged product still returns a
// discussion, just with an empty URL — the client falls back to its own
// default route in that case.
func (v *Visitor) Visit(ctx context.Context, parentID, childID uint) (Result, error) {
	products := v.catalog.ForClusterChild(childID)

	var url string
	for _, p := range products {
		if p.RouteHint != "" {
			url = p.RouteHint
			break
		}
	}

	discussion, err := v.generateDiscussion(ctx, parentID, childID, products)
	if err != nil {
		return Result{}, err
	}

	return Result{URL: url, Discussion: discussion}, nil
}

func (v *Visitor) generateDiscussion(ctx context.Context, parentID, childID uint, products []catalog.Product) (string, error) {
	var b strings.Builder
	b.WriteString("You are narrating a live analytics dashboard for a user who just asked a question. ")
	b.WriteString("Write two to three spoken sentences introducing the section they are about to see. ")
	b.WriteString("Respond with plain text only, no markdown, no preamble.\n\n")

	if label := v.labels.ParentLabel(parentID); label != "" {
		b.WriteString("Category: " + label + "\n")
	}
	if label := v.labels.ChildLabel(childID); label != "" {
		b.WriteString("Sub-category: " + label + "\n")
	}
	if len(products) > 0 {
		b.WriteString("Related data: " + products[0].Description + "\n")
	}

	text, err := v.llm.GenerateText(ctx, b.String())
	if err != nil {
		return "", apperrors.Wrap(apperrors.LLMParseError, "generating analytics-visit discussion", err)
	}
	return strings.TrimSpace(text), nil
}
