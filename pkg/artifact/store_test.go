package artifact_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/catalog"
)

func newTestStore(t *testing.T) (*artifact.Store, string) {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "top10.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("ranking_type,category,volume\nVolume (Last 30 Days),Roads,120\nVolume (Last 30 Days),Water,80\n"), 0o644))

	cat, err := catalog.New([]catalog.Product{
		{ID: "top10_volume_30d", SourceFile: "top10.csv", Filter: "ranking_type == 'Volume (Last 30 Days)'"},
	})
	require.NoError(t, err)

	store := artifact.NewStore(artifact.Config{Dir: dir, SummaryPreviewRows: 50, LLMInputBudgetChars: 10000}, cat, logger.NewIsolatedLogger(filepath.Join(dir, "test.log")))
	return store, dir
}

func TestLoadSummaryIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.LoadSummary(ctx, "top10_volume_30d")
	require.NoError(t, err)
	second, err := store.LoadSummary(ctx, "top10_volume_30d")
	require.NoError(t, err)

	assert.Equal(t, first.Render(), second.Render())
	assert.Equal(t, 2, first.Shape[0])
}

func TestLoadSummaryMissingArtifactIsUnavailable(t *testing.T) {
	dir := t.TempDir()
	cat, err := catalog.New([]catalog.Product{{ID: "missing", SourceFile: "nope.csv"}})
	require.NoError(t, err)
	store := artifact.NewStore(artifact.Config{Dir: dir, SummaryPreviewRows: 50, LLMInputBudgetChars: 10000}, cat, logger.NewIsolatedLogger(filepath.Join(dir, "test.log")))

	_, err = store.LoadSummary(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ArtifactUnavailable, apperrors.KindOf(err))
}

func TestConcurrentColdLoadsObserveSameSummary(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const n = 3
	results := make([]*artifact.Summary, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			sum, err := store.LoadSummary(ctx, "top10_volume_30d")
			require.NoError(t, err)
			results[i] = sum
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, results[0].Render(), results[i].Render())
	}
}

func TestTruncateToBudgetAddsMarker(t *testing.T) {
	text := "line1\nline2\nline3\nline4\n"
	out := artifact.TruncateToBudget(text, 12)
	assert.Contains(t, out, "of 4 total")
}
