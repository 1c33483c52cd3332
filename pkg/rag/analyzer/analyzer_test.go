package analyzer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/llm"
	"analytics-assistant-be/pkg/rag/analyzer"
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
	response   string
	lastPrompt string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.response, nil
}
func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	p.lastPrompt = prompt
	return p.response, nil
}

func testClient(response string) *llm.Client {
	return llm.NewClient(&scriptedProvider{response: response}, 2*time.Second, time.Millisecond, 5*time.Millisecond, nopLogger{})
}

func testClientWithProvider(response string) (*llm.Client, *scriptedProvider) {
	p := &scriptedProvider{response: response}
	return llm.NewClient(p, 2*time.Second, time.Millisecond, 5*time.Millisecond, nopLogger{}), p
}

func TestAnalyzeHappyPath(t *testing.T) {
	a := analyzer.New(testClient(`{"answer": "Requests peak on Mondays.", "rationale": ["Frequency summary shows a Monday spike."], "key_metrics": ["requests_per_day"]}`))

	log := &analyzer.AccessLog{}
	log.Record("frequency_over_time", [2]int{2, 2}, analyzer.SourceSummary)
	summaries := []*artifact.Summary{{ProductID: "frequency_over_time", Raw: "day,count\nMon,120\nTue,80"}}

	result, err := a.Analyze(context.Background(), "when do requests peak?", log, summaries)
	require.NoError(t, err)
	assert.Equal(t, "Requests peak on Mondays.", result.Answer)
	assert.NotEmpty(t, result.Rationale)
}

func TestAnalyzeRejectsEmptyAnswer(t *testing.T) {
	a := analyzer.New(testClient(`{"answer": "", "rationale": ["some reasoning"], "key_metrics": []}`))

	_, err := a.Analyze(context.Background(), "q", &analyzer.AccessLog{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.LLMParseError, apperrors.KindOf(err))
}

func TestAnalyzeAllowsEmptyKeyMetrics(t *testing.T) {
	a := analyzer.New(testClient(`{"answer": "Answer.", "rationale": ["Because."], "key_metrics": []}`))

	result, err := a.Analyze(context.Background(), "q", &analyzer.AccessLog{}, nil)
	require.NoError(t, err)
	assert.Empty(t, result.KeyMetrics)
}

func TestAnalyzeRejectsEmptyRationale(t *testing.T) {
	a := analyzer.New(testClient(`{"answer": "Answer.", "rationale": [], "key_metrics": []}`))

	_, err := a.Analyze(context.Background(), "q", &analyzer.AccessLog{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.LLMParseError, apperrors.KindOf(err))
}

func TestAnalyzeRejectsTooManyRationaleBullets(t *testing.T) {
	a := analyzer.New(testClient(`{"answer": "Answer.", "rationale": ["1","2","3","4","5","6","7","8"], "key_metrics": []}`))

	_, err := a.Analyze(context.Background(), "q", &analyzer.AccessLog{}, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.LLMParseError, apperrors.KindOf(err))
}

func TestAnalyzePromptIncludesAccessLog(t *testing.T) {
	client, provider := testClientWithProvider(`{"answer": "Answer.", "rationale": ["Because."], "key_metrics": []}`)
	a := analyzer.New(client)

	log := &analyzer.AccessLog{}
	log.Record("frequency_over_time", [2]int{30, 2}, analyzer.SourceSummary)
	summaries := []*artifact.Summary{{ProductID: "frequency_over_time", Raw: "day,count\nMon,120"}}

	_, err := a.Analyze(context.Background(), "q", log, summaries)
	require.NoError(t, err)
	assert.Contains(t, provider.lastPrompt, "<access_log>")
	assert.Contains(t, provider.lastPrompt, "frequency_over_time: shape (30, 2), source=summary")
}
