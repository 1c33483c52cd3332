package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
)

// Client wraps a raw LLMProvider with the retry, timeout and parse-repair
// policy that every call site in the system relies on, so no controller or
// orchestrator step talks to a provider directly. It holds no per-call
// state and is safe for concurrent use.
type Client struct {
	provider        LLMProvider
	callTimeout     time.Duration
	retryBackoff    time.Duration
	retryBackoffMax time.Duration
	log             logger.ILogger
}

func NewClient(provider LLMProvider, callTimeout, retryBackoff, retryBackoffMax time.Duration, log logger.ILogger) *Client {
	return &Client{
		provider:        provider,
		callTimeout:     callTimeout,
		retryBackoff:    retryBackoff,
		retryBackoffMax: retryBackoffMax,
		log:             log,
	}
}

// GenerateText issues a single free-form prompt. A transient failure
// (timeout, rate limit) is retried once after an exponential backoff; a
// second failure is surfaced as LLMParseError, terminal from here on.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.callWithRetry(ctx, prompt)
}

// GenerateSearchKeywords turns a free-form analytics question into a short,
// comma-separated list of keywords suitable for embedding against the
// cluster index centroids, per the CP pipeline in spec.md section 4.5.
func (c *Client) GenerateSearchKeywords(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf(searchKeywordsPromptTemplate, question)
	text, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}
	keywords := strings.TrimSpace(text)
	keywords = strings.Trim(keywords, "\"'")
	return keywords, nil
}

// GenerateJSON asks the model for a JSON object matching schemaHint. If the
// first response does not parse, one repair attempt is made with an
// amended prompt asking the model to fix its own output; a second failure
// becomes LLMParseError.
func (c *Client) GenerateJSON(ctx context.Context, prompt, schemaHint string) (json.RawMessage, error) {
	text, err := c.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if raw, ok := parseJSONObject(text); ok {
		return raw, nil
	}

	c.log.Warn("llm", "generate_json response did not parse, retrying with repair hint", nil)

	repairPrompt := fmt.Sprintf(repairPromptTemplate, prompt, schemaHint, text)
	text, err = c.callWithRetry(ctx, repairPrompt)
	if err != nil {
		return nil, err
	}

	if raw, ok := parseJSONObject(text); ok {
		return raw, nil
	}

	return nil, apperrors.New(apperrors.LLMParseError, "model did not return valid JSON after one repair attempt")
}

func parseJSONObject(text string) (json.RawMessage, bool) {
	candidate, ok := extractJSON(text)
	if !ok {
		return nil, false
	}
	var probe map[string]any
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// callWithRetry runs prompt through the provider once, and once more after
// an exponential backoff if the first attempt failed transiently.
func (c *Client) callWithRetry(ctx context.Context, prompt string) (string, error) {
	text, err := c.callOnce(ctx, prompt)
	if err == nil {
		return text, nil
	}
	if !isTransient(err) {
		return "", apperrors.Wrap(apperrors.LLMParseError, "llm call failed", err)
	}

	c.log.Warn("llm", "transient error on first attempt, retrying after backoff", map[string]interface{}{"error": err.Error()})

	select {
	case <-time.After(c.backoffDuration()):
	case <-ctx.Done():
		return "", apperrors.Wrap(apperrors.CancelledByClient, "llm call cancelled during backoff", ctx.Err())
	}

	text, err = c.callOnce(ctx, prompt)
	if err != nil {
		// Per the error taxonomy, a transient failure that survives its one
		// retry becomes a terminal LLMParseError-equivalent failure rather
		// than staying LLMTransient (which would imply it is still worth
		// retrying upstream).
		return "", apperrors.Wrap(apperrors.LLMParseError, "llm call failed after one retry", err)
	}
	return text, nil
}

func (c *Client) callOnce(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.provider.Generate(callCtx, prompt)
}

func (c *Client) backoffDuration() time.Duration {
	if c.retryBackoff <= 0 {
		return 500 * time.Millisecond
	}
	if c.retryBackoff > c.retryBackoffMax && c.retryBackoffMax > 0 {
		return c.retryBackoffMax
	}
	return c.retryBackoff
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "503"),
		strings.Contains(msg, "temporarily unavailable"):
		return true
	default:
		return false
	}
}

const searchKeywordsPromptTemplate = `Extract 3 to 6 short search keywords or phrases from the following analytics question. Respond with only a comma-separated list, no explanation.

Question: %s`

const repairPromptTemplate = `Your previous response to the prompt below did not contain valid JSON matching the required shape.

Original prompt:
%s

Required JSON shape:
%s

Your previous response:
%s

Respond again with ONLY a single valid JSON object matching the required shape. Do not include markdown fences or commentary.`
