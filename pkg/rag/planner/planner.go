// Package planner implements the Planner (P) component: given a question
// and the catalog description, it asks LC for a short, ordered list of
// products worth loading before analysis begins.
package planner

import (
	"context"
	"encoding/json"
	"strings"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/catalog"
	"analytics-assistant-be/pkg/llm"
)

// maxPlanEntries bounds the plan regardless of what the model returns;
// entries beyond this are dropped in submission order (spec.md section 4.6).
const maxPlanEntries = 3

type Entry struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

type Plan struct {
	Entries []Entry
}

type planWire struct {
	Plan []Entry `json:"plan"`
}

const schemaHint = `{"plan": [{"product_id": "string, must be one of the listed ids", "reason": "one sentence"}]}`

type Planner struct {
	llm     *llm.Client
	catalog *catalog.Catalog
}

func New(llmClient *llm.Client, cat *catalog.Catalog) *Planner {
	return &Planner{llm: llmClient, catalog: cat}
}

// Plan asks LC to choose 1-3 products for question, grounded in the
// catalog and a fixed sample-context preview built once at startup (see
// SPEC_FULL.md section 3). Entries naming an id outside the catalog are
// dropped; if nothing survives, Plan fails with PlanningFailed.
func (p *Planner) Plan(ctx context.Context, question, sampleContext string) (*Plan, error) {
	prompt := composePrompt(p.catalog.DescribeForPlanner(), sampleContext, question)

	raw, err := p.llm.GenerateJSON(ctx, prompt, schemaHint)
	if err != nil {
		return nil, err
	}

	var wire planWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, apperrors.Wrap(apperrors.LLMParseError, "planner response did not match the plan schema", err)
	}

	valid := make([]Entry, 0, len(wire.Plan))
	for _, e := range wire.Plan {
		id := strings.TrimSpace(e.ProductID)
		if id == "" {
			continue
		}
		if _, err := p.catalog.Get(id); err != nil {
			continue
		}
		valid = append(valid, Entry{ProductID: id, Reason: strings.TrimSpace(e.Reason)})
		if len(valid) == maxPlanEntries {
			break
		}
	}

	if len(valid) == 0 {
		return nil, apperrors.New(apperrors.PlanningFailed, "planner produced no valid product selections")
	}

	return &Plan{Entries: valid}, nil
}
