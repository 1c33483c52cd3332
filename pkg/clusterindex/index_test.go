package clusterindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/clusterindex"
)

func buildIndex() *clusterindex.Index {
	level1 := []clusterindex.Centroid{
		{ID: 1, Vector: []float32{1, 0, 0}},
		{ID: 2, Vector: []float32{0, 1, 0}},
	}
	level2 := []clusterindex.Centroid{
		{ID: 10, ParentID: 1, Vector: []float32{0.9, 0.1, 0}, ExampleCount: 0},
		{ID: 11, ParentID: 1, Vector: []float32{0.8, 0.2, 0}, ExampleCount: 5},
		{ID: 20, ParentID: 2, Vector: []float32{0, 0.9, 0.1}, ExampleCount: 3},
	}
	return clusterindex.NewInMemory(3, level1, level2)
}

func TestPredictParentChildRelationship(t *testing.T) {
	idx := buildIndex()
	pred, err := idx.Predict([]float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint(1), pred.ParentID)
	assert.Equal(t, uint(10), pred.ChildID)
	assert.True(t, pred.Confidence > 0 && pred.Confidence <= 1)
}

func TestPredictDimensionMismatch(t *testing.T) {
	idx := buildIndex()
	_, err := idx.Predict([]float32{1, 0})
	require.Error(t, err)
	assert.Equal(t, apperrors.DimensionError, apperrors.KindOf(err))
}

func TestPredictWithFallbackSkipsEmptyCluster(t *testing.T) {
	idx := buildIndex()
	// Nearest child to (1,0,0) under parent 1 is id 10 (no examples); the
	// fallback must walk to id 11 instead.
	pred, err := idx.PredictWithFallback([]float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint(1), pred.ParentID)
	assert.Equal(t, uint(11), pred.ChildID)
}

func TestPredictWithFallbackFallsBackToOtherParent(t *testing.T) {
	level1 := []clusterindex.Centroid{
		{ID: 1, Vector: []float32{1, 0, 0}},
		{ID: 2, Vector: []float32{0, 1, 0}},
	}
	level2 := []clusterindex.Centroid{
		{ID: 10, ParentID: 1, Vector: []float32{0.9, 0.1, 0}, ExampleCount: 0},
		{ID: 20, ParentID: 2, Vector: []float32{0, 0.9, 0.1}, ExampleCount: 7},
	}
	idx := clusterindex.NewInMemory(3, level1, level2)

	pred, err := idx.PredictWithFallback([]float32{1, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint(2), pred.ParentID)
	assert.Equal(t, uint(20), pred.ChildID)
}
