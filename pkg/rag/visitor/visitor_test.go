package visitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/catalog"
	"analytics-assistant-be/pkg/llm"
	"analytics-assistant-be/pkg/rag/visitor"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }
func (nopLogger) GetLogs(string, int, int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(string) (*logger.LogEntry, error) { return nil, nil }

type scriptedProvider struct {
	response string
	err      error
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, "", opts...)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

type fakeLabels struct {
	parent, child string
}

func (f fakeLabels) ParentLabel(uint) string { return f.parent }
func (f fakeLabels) ChildLabel(uint) string  { return f.child }

func testCatalog(t *testing.T, childID uint) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Product{
		{ID: "frequency_over_time", Description: "Requests over time", RouteHint: "/dashboard/analytics/frequency", ClusterChildID: &childID},
	})
	require.NoError(t, err)
	return cat
}

func TestVisitResolvesRouteAndDiscussion(t *testing.T) {
	childID := uint(20)
	cat := testCatalog(t, childID)
	labels := fakeLabels{parent: "Billing", child: "Refund requests"}
	provider := &scriptedProvider{response: "Here is your refund requests breakdown."}
	llmClient := llm.NewClient(provider, time.Second, time.Millisecond, time.Millisecond, nopLogger{})

	v := visitor.New(cat, labels, llmClient)
	result, err := v.Visit(context.Background(), 1, childID)
	require.NoError(t, err)
	assert.Equal(t, "/dashboard/analytics/frequency", result.URL)
	assert.Equal(t, "Here is your refund requests breakdown.", result.Discussion)
}

func TestVisitWithNoTaggedProductLeavesURLEmpty(t *testing.T) {
	cat := testCatalog(t, 999)
	labels := fakeLabels{}
	provider := &scriptedProvider{response: "General overview."}
	llmClient := llm.NewClient(provider, time.Second, time.Millisecond, time.Millisecond, nopLogger{})

	v := visitor.New(cat, labels, llmClient)
	result, err := v.Visit(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, result.URL)
	assert.Equal(t, "General overview.", result.Discussion)
}

func TestVisitPropagatesLLMFailure(t *testing.T) {
	cat := testCatalog(t, 20)
	labels := fakeLabels{}
	provider := &scriptedProvider{err: errors.New("boom")}
	llmClient := llm.NewClient(provider, time.Second, time.Millisecond, time.Millisecond, nopLogger{})

	v := visitor.New(cat, labels, llmClient)
	_, err := v.Visit(context.Background(), 1, 20)
	require.Error(t, err)
}
