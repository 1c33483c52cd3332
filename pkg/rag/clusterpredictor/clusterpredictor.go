// Package clusterpredictor implements the Cluster Predictor (CP)
// component: it turns a free-form question into a cluster prediction by
// extracting search keywords via LC, embedding them, and querying EI.
package clusterpredictor

import (
	"context"

	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/clusterindex"
	"analytics-assistant-be/pkg/embedding"
	"analytics-assistant-be/pkg/llm"
)

type Predictor struct {
	llm       *llm.Client
	embedding *embedding.Client
	index     *clusterindex.Index
	log       logger.ILogger
}

func New(llmClient *llm.Client, embeddingClient *embedding.Client, index *clusterindex.Index, log logger.ILogger) *Predictor {
	return &Predictor{llm: llmClient, embedding: embeddingClient, index: index, log: log}
}

// Predict runs question → LC.generate_search_keywords → embed → EI.predict.
// If keyword extraction fails, CP falls back to embedding the raw question
// directly rather than failing the whole prediction (spec.md section 4.5).
func (p *Predictor) Predict(ctx context.Context, question string) (clusterindex.Prediction, error) {
	keywords, err := p.llm.GenerateSearchKeywords(ctx, question)
	if err != nil {
		p.log.Warn("clusterpredictor", "keyword extraction failed, falling back to raw question embedding", map[string]interface{}{"error": err.Error()})
		keywords = question
	}

	vector, err := p.embedding.Embed(ctx, keywords, "retrieval_query")
	if err != nil {
		return clusterindex.Prediction{}, err
	}

	return p.index.PredictWithFallback(vector)
}
