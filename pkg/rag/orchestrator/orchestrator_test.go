package orchestrator_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/catalog"
	"analytics-assistant-be/pkg/clusterindex"
	"analytics-assistant-be/pkg/rag/analyzer"
	"analytics-assistant-be/pkg/rag/orchestrator"
	"analytics-assistant-be/pkg/rag/planner"
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

type fakePlanner struct {
	plan *planner.Plan
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, question, sampleContext string) (*planner.Plan, error) {
	return f.plan, f.err
}

type fakeAnalyzer struct {
	result *analyzer.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, question string, accessLog *analyzer.AccessLog, summaries []*artifact.Summary) (*analyzer.AnalysisResult, error) {
	return f.result, f.err
}

type fakeClusterPredictor struct {
	pred clusterindex.Prediction
	err  error
}

func (f *fakeClusterPredictor) Predict(ctx context.Context, question string) (clusterindex.Prediction, error) {
	return f.pred, f.err
}

type fakeArtifactStore struct {
	summaries map[string]*artifact.Summary
	err       error
}

func (f *fakeArtifactStore) LoadSummary(ctx context.Context, productID string) (*artifact.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries[productID], nil
}

type fakeTextGenerator struct {
	text string
	err  error
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Product{
		{ID: "frequency_over_time", RouteHint: "/dashboard/analytics/frequency"},
	})
	require.NoError(t, err)
	return cat
}

func drain(ch <-chan orchestrator.Event) []orchestrator.Event {
	var events []orchestrator.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestDeepAnalysisHappyPathEventOrder(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{summaries: map[string]*artifact.Summary{
			"frequency_over_time": {ProductID: "frequency_over_time", Raw: "day,count\nMon,10"},
		}},
		&fakePlanner{plan: &planner.Plan{Entries: []planner.Entry{{ProductID: "frequency_over_time", Reason: "trend"}}}},
		&fakeAnalyzer{result: &analyzer.AnalysisResult{Answer: "Peaks Monday", Rationale: []string{"data shows it"}}},
		&fakeClusterPredictor{pred: clusterindex.Prediction{ParentID: 1, ChildID: 10}},
		&fakeTextGenerator{},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "how are requests trending?", orchestrator.ModeDeepAnalysis))

	types := make([]orchestrator.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	assert.Equal(t, []orchestrator.EventType{
		orchestrator.EventUser,
		orchestrator.EventThought,
		orchestrator.EventPlan,
		orchestrator.EventThought,
		orchestrator.EventNavigation,
		orchestrator.EventThought,
		orchestrator.EventAnswer,
		orchestrator.EventClusterPrediction,
		orchestrator.EventComplete,
	}, types)
}

func TestDeepAnalysisArtifactUnavailableTerminatesWithoutComplete(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{err: apperrors.New(apperrors.ArtifactUnavailable, "missing csv")},
		&fakePlanner{plan: &planner.Plan{Entries: []planner.Entry{{ProductID: "frequency_over_time"}}}},
		&fakeAnalyzer{},
		nil,
		&fakeTextGenerator{},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "q", orchestrator.ModeDeepAnalysis))
	last := events[len(events)-1]
	assert.Equal(t, orchestrator.EventError, last.Type)
	assert.Equal(t, apperrors.ArtifactUnavailable, last.Kind)
}

func TestChatModeEmitsChatThenComplete(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{},
		&fakePlanner{},
		&fakeAnalyzer{},
		nil,
		&fakeTextGenerator{text: "Here's a quick answer."},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "what's up?", orchestrator.ModeChat))
	require.Len(t, events, 3)
	assert.Equal(t, orchestrator.EventUser, events[0].Type)
	assert.Equal(t, orchestrator.EventChat, events[1].Type)
	assert.Equal(t, "Here's a quick answer.", events[1].Content)
	assert.Equal(t, orchestrator.EventComplete, events[2].Type)
}

func TestAutoModeWithAnalysisTokenRequestsConfirmation(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{},
		&fakePlanner{},
		&fakeAnalyzer{},
		nil,
		&fakeTextGenerator{},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "run an analysis on backlog", orchestrator.ModeAuto))
	require.Len(t, events, 1)
	assert.Equal(t, orchestrator.EventConfirmation, events[0].Type)
	assert.Equal(t, "Deep analysis?", events[0].Content)
}

func TestAutoModeWithoutAnalysisTokenFallsBackToChat(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{},
		&fakePlanner{},
		&fakeAnalyzer{},
		nil,
		&fakeTextGenerator{text: "hi there"},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "hello", orchestrator.ModeAuto))
	require.Len(t, events, 3)
	assert.Equal(t, orchestrator.EventChat, events[1].Type)
}

func TestCancellationStopsBeforeComplete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{},
		&fakePlanner{plan: &planner.Plan{Entries: []planner.Entry{{ProductID: "frequency_over_time"}}}},
		&fakeAnalyzer{},
		nil,
		&fakeTextGenerator{},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(ctx, "q", orchestrator.ModeDeepAnalysis))
	for _, e := range events {
		assert.NotEqual(t, orchestrator.EventComplete, e.Type)
	}
	_ = time.Second
}

func TestChatModeTriggersClusterPredictionBeforeChat(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{},
		&fakePlanner{},
		&fakeAnalyzer{},
		&fakeClusterPredictor{pred: clusterindex.Prediction{ParentID: 1, ChildID: 2}},
		&fakeTextGenerator{text: "answer"},
		"",
		orchestrator.Config{DomainTokens: []string{"backlog"}},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "what's my backlog look like?", orchestrator.ModeChat))
	require.Len(t, events, 4)
	assert.Equal(t, orchestrator.EventClusterPrediction, events[1].Type)
	assert.Equal(t, orchestrator.EventChat, events[2].Type)
}

func TestEventJSONMatchesTypeContentDataEnvelope(t *testing.T) {
	so := orchestrator.New(
		testCatalog(t),
		&fakeArtifactStore{summaries: map[string]*artifact.Summary{
			"frequency_over_time": {ProductID: "frequency_over_time", Raw: "day,count\nMon,10"},
		}},
		&fakePlanner{plan: &planner.Plan{Entries: []planner.Entry{{ProductID: "frequency_over_time", Reason: "trend"}}}},
		&fakeAnalyzer{result: &analyzer.AnalysisResult{Answer: "Peaks Monday", Rationale: []string{"data shows it"}}},
		&fakeClusterPredictor{pred: clusterindex.Prediction{ParentID: 1, ChildID: 10}},
		&fakeTextGenerator{},
		"",
		orchestrator.Config{},
		nopLogger{},
	)

	events := drain(so.Run(context.Background(), "how are requests trending?", orchestrator.ModeDeepAnalysis))

	for _, ev := range events {
		raw, err := json.Marshal(ev)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))

		assert.Equal(t, string(ev.Type), decoded["type"])
		assert.Contains(t, decoded, "content")

		switch ev.Type {
		case orchestrator.EventPlan, orchestrator.EventNavigation, orchestrator.EventAnswer, orchestrator.EventClusterPrediction:
			assert.Contains(t, decoded, "data")
		}
	}
}
