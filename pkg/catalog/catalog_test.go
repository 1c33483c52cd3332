package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/catalog"
)

func sample() []catalog.Product {
	frequencyChild := uint(10)
	return []catalog.Product{
		{ID: "top10_volume_30d", Description: "top ten by volume", UseCases: []string{"prioritize"}, KeyMetrics: []string{"volume"}, RouteHint: "/dashboard/analytics/frequency"},
		{ID: "backlog_ranked_list", Description: "backlog ranking", UseCases: []string{"triage"}, KeyMetrics: []string{"avg_age_days"}},
		{ID: "frequency_over_time", Description: "monthly volume", ClusterChildID: &frequencyChild},
	}
}

func TestGet(t *testing.T) {
	c, err := catalog.New(sample())
	require.NoError(t, err)

	p, err := c.Get("top10_volume_30d")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/analytics/frequency", p.RouteHint)

	_, err = c.Get("does_not_exist")
	require.Error(t, err)
	assert.Equal(t, apperrors.UnknownProduct, apperrors.KindOf(err))
}

func TestDuplicateIDIsConfigError(t *testing.T) {
	_, err := catalog.New([]catalog.Product{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.ConfigError, apperrors.KindOf(err))
}

func TestForClusterChildFindsTaggedProducts(t *testing.T) {
	c, err := catalog.New(sample())
	require.NoError(t, err)

	matches := c.ForClusterChild(10)
	require.Len(t, matches, 1)
	assert.Equal(t, "frequency_over_time", matches[0].ID)

	assert.Empty(t, c.ForClusterChild(999))
}

func TestDescribeForPlannerIsDeterministic(t *testing.T) {
	c, err := catalog.New(sample())
	require.NoError(t, err)

	first := c.DescribeForPlanner()
	second := c.DescribeForPlanner()
	assert.Equal(t, first, second)
	assert.Contains(t, first, "top10_volume_30d")
	assert.Contains(t, first, "backlog_ranked_list")
}
