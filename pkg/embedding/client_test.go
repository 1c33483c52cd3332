package embedding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/embedding"
)

type fakeProvider struct {
	values []float32
	err    error
}

func (f *fakeProvider) Generate(ctx context.Context, text, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: f.values}}, nil
}

func TestEmbedReturnsVectorMatchingDimension(t *testing.T) {
	p := &fakeProvider{values: []float32{0.1, 0.2, 0.3}}
	c := embedding.NewClient(p, 3)

	out, err := c.Embed(context.Background(), "backlog aging", "retrieval_query")
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestEmbedDimensionMismatchIsDimensionError(t *testing.T) {
	p := &fakeProvider{values: []float32{0.1, 0.2}}
	c := embedding.NewClient(p, 384)

	_, err := c.Embed(context.Background(), "backlog aging", "retrieval_query")
	require.Error(t, err)
	assert.Equal(t, apperrors.DimensionError, apperrors.KindOf(err))
}

func TestEmbedProviderFailureIsDimensionError(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection refused")}
	c := embedding.NewClient(p, 384)

	_, err := c.Embed(context.Background(), "backlog aging", "retrieval_query")
	require.Error(t, err)
	assert.Equal(t, apperrors.DimensionError, apperrors.KindOf(err))
}
