// Package analyzer implements the Analyzer (A) component: it turns a
// question plus the Summaries fetched for a Plan into a grounded,
// structured AnalysisResult.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/llm"
)

// SourceType records whether an AccessEntry reflects a Summary or the
// full Artifact behind it.
type SourceType string

const (
	SourceSummary SourceType = "summary"
	SourceFull    SourceType = "full"
)

// AccessEntry is one product SO loaded data for, its shape, and which
// tier of data (summary or full) backed it.
type AccessEntry struct {
	ProductID string
	Shape     [2]int
	Source    SourceType
}

// AccessLog records, in order, which products were actually loaded for a
// session, their shape, and whether summary or full data was used, so
// the Analyzer's prompt (and any downstream audit event) can name exactly
// what backed the answer, per spec.md section 3's Data Model.
type AccessLog struct {
	Entries []AccessEntry
}

func (a *AccessLog) Record(productID string, shape [2]int, source SourceType) {
	a.Entries = append(a.Entries, AccessEntry{ProductID: productID, Shape: shape, Source: source})
}

type AnalysisResult struct {
	Answer     string   `json:"answer"`
	Rationale  []string `json:"rationale"`
	KeyMetrics []string `json:"key_metrics"`
}

const schemaHint = `{"answer": "string", "rationale": ["string", ...], "key_metrics": ["string", ...]}`

// minRationaleBullets and maxRationaleBullets bound AnalysisResult.Rationale:
// at least one bullet and at most seven.
const (
	minRationaleBullets = 1
	maxRationaleBullets = 7
)

type Analyzer struct {
	llm *llm.Client
}

func New(llmClient *llm.Client) *Analyzer {
	return &Analyzer{llm: llmClient}
}

// Analyze grounds every claim in the given summaries; it must never invent
// a product beyond what accessLog names. Post-validation requires a
// non-empty answer and 1-7 rationale bullets; KeyMetrics may be empty.
func (a *Analyzer) Analyze(ctx context.Context, question string, accessLog *AccessLog, summaries []*artifact.Summary) (*AnalysisResult, error) {
	prompt := composePrompt(question, accessLog, summaries)

	raw, err := a.llm.GenerateJSON(ctx, prompt, schemaHint)
	if err != nil {
		return nil, err
	}

	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, apperrors.Wrap(apperrors.LLMParseError, "analyzer response did not match the analysis schema", err)
	}

	if strings.TrimSpace(result.Answer) == "" {
		return nil, apperrors.New(apperrors.LLMParseError, "analyzer returned an empty answer")
	}
	if len(result.Rationale) < minRationaleBullets || len(result.Rationale) > maxRationaleBullets {
		return nil, apperrors.New(apperrors.LLMParseError, fmt.Sprintf("analyzer returned %d rationale bullets, want %d-%d", len(result.Rationale), minRationaleBullets, maxRationaleBullets))
	}
	for _, bullet := range result.Rationale {
		if strings.TrimSpace(bullet) == "" {
			return nil, apperrors.New(apperrors.LLMParseError, "analyzer returned an empty rationale bullet")
		}
	}

	return &result, nil
}
