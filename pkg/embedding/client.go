package embedding

import (
	"context"

	"analytics-assistant-be/internal/apperrors"
)

// Client wraps a provider with the dimension contract the cluster index
// requires: every vector returned to a caller has exactly Dimension
// components, or the call fails closed with DimensionError instead of
// letting a mismatched vector reach the nearest-centroid scan.
type Client struct {
	provider  EmbeddingProvider
	dimension int
}

func NewClient(provider EmbeddingProvider, dimension int) *Client {
	return &Client{provider: provider, dimension: dimension}
}

// Embed generates a single vector for text. taskType is one of
// "retrieval_query" or "retrieval_document"; providers that don't
// distinguish the two ignore it.
func (c *Client) Embed(ctx context.Context, text, taskType string) ([]float32, error) {
	resp, err := c.provider.Generate(ctx, text, taskType)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DimensionError, "embedding provider call failed", err)
	}

	values := resp.Embedding.Values
	if len(values) != c.dimension {
		return nil, apperrors.Newf(apperrors.DimensionError, "embedding dimension mismatch: got %d, want %d", len(values), c.dimension)
	}
	return values, nil
}
