package llm_test

import (
	"context"
	"errors"
	"time"

	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/llm"
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

// scriptedProvider returns queued responses/errors in order, one per call.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, "", opts...)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	i := p.calls
	p.calls++
	var resp string
	var err error
	if i < len(p.responses) {
		resp = p.responses[i]
	}
	if i < len(p.errs) {
		err = p.errs[i]
	}
	return resp, err
}

func newTestClient(p llm.LLMProvider) *llm.Client {
	return llm.NewClient(p, 2*time.Second, time.Millisecond, 5*time.Millisecond, nopLogger{})
}

func TestGenerateTextHappyPath(t *testing.T) {
	p := &scriptedProvider{responses: []string{"hello there"}}
	c := newTestClient(p)

	out, err := c.GenerateText(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)
	assert.Equal(t, 1, p.calls)
}

func TestGenerateTextRetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptedProvider{
		responses: []string{"", "recovered"},
		errs:      []error{errors.New("request timeout"), nil},
	}
	c := newTestClient(p)

	out, err := c.GenerateText(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, 2, p.calls)
}

func TestGenerateTextTransientExhaustedIsTerminal(t *testing.T) {
	p := &scriptedProvider{
		errs: []error{errors.New("429 rate limit"), errors.New("429 rate limit")},
	}
	c := newTestClient(p)

	_, err := c.GenerateText(context.Background(), "say hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.LLMParseError, apperrors.KindOf(err))
	assert.Equal(t, 2, p.calls)
}

func TestGenerateTextNonTransientFailsFast(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("invalid api key")}}
	c := newTestClient(p)

	_, err := c.GenerateText(context.Background(), "say hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.LLMParseError, apperrors.KindOf(err))
	assert.Equal(t, 1, p.calls)
}

func TestGenerateJSONParsesFirstAttempt(t *testing.T) {
	p := &scriptedProvider{responses: []string{`here you go: {"product_id": "frequency_over_time", "reason": "trend"}`}}
	c := newTestClient(p)

	raw, err := c.GenerateJSON(context.Background(), "plan this", `{"product_id": "string", "reason": "string"}`)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "frequency_over_time")
	assert.Equal(t, 1, p.calls)
}

func TestGenerateJSONRepairsOnSecondAttempt(t *testing.T) {
	p := &scriptedProvider{responses: []string{
		"sorry, I cannot produce JSON right now",
		`{"product_id": "backlog_ranked_list", "reason": "fixed"}`,
	}}
	c := newTestClient(p)

	raw, err := c.GenerateJSON(context.Background(), "plan this", `{"product_id": "string"}`)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "backlog_ranked_list")
	assert.Equal(t, 2, p.calls)
}

func TestGenerateJSONFailsAfterRepairAttempt(t *testing.T) {
	p := &scriptedProvider{responses: []string{"nope", "still nope"}}
	c := newTestClient(p)

	_, err := c.GenerateJSON(context.Background(), "plan this", `{"product_id": "string"}`)
	require.Error(t, err)
	assert.Equal(t, apperrors.LLMParseError, apperrors.KindOf(err))
	assert.Equal(t, 2, p.calls)
}

func TestGenerateSearchKeywordsTrimsQuotes(t *testing.T) {
	p := &scriptedProvider{responses: []string{"\"backlog, priority, geographic\""}}
	c := newTestClient(p)

	out, err := c.GenerateSearchKeywords(context.Background(), "what's overdue near me?")
	require.NoError(t, err)
	assert.Equal(t, "backlog, priority, geographic", out)
}
