package voice

import (
	"context"

	"analytics-assistant-be/internal/apperrors"
)

// Client is the process-wide, read-mostly VC handle every Session shares
// (spec.md section 5). A nil Provider means voice was never configured
// (VOICE_API_KEY absent); Client stays non-nil so callers never need to
// nil-check it directly, they check Enabled().
type Client struct {
	provider Provider
}

func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

func (c *Client) Enabled() bool {
	return c.provider != nil
}

func (c *Client) TTS(ctx context.Context, text, voiceID, format string) ([]byte, error) {
	f, err := c.checkedFormat(format)
	if err != nil {
		return nil, err
	}
	return c.provider.TTS(ctx, text, voiceID, f)
}

func (c *Client) TTSStream(ctx context.Context, text, voiceID, format string) (<-chan AudioChunk, <-chan error) {
	f, err := c.checkedFormat(format)
	if err != nil {
		errCh := make(chan error, 1)
		errCh <- err
		close(errCh)
		return nil, errCh
	}
	return c.provider.TTSStream(ctx, text, voiceID, f)
}

func (c *Client) TTSWithTimestamps(ctx context.Context, text, voiceID, format string) (*TimestampedAudio, error) {
	f, err := c.checkedFormat(format)
	if err != nil {
		return nil, err
	}
	return c.provider.TTSWithTimestamps(ctx, text, voiceID, f)
}

func (c *Client) STT(ctx context.Context, audio []byte, format string) (string, error) {
	f, err := c.checkedFormat(format)
	if err != nil {
		return "", err
	}
	return c.provider.STT(ctx, audio, f)
}

func (c *Client) STTStream(ctx context.Context, format string, chunks <-chan STTChunk) <-chan TranscriptEvent {
	if _, err := c.checkedFormat(format); err != nil {
		out := make(chan TranscriptEvent, 1)
		out <- TranscriptEvent{Type: "error", Error: err.Error()}
		close(out)
		return out
	}
	return c.provider.STTStream(ctx, chunks)
}

func (c *Client) checkedFormat(format string) (Format, error) {
	if !c.Enabled() {
		return "", apperrors.New(apperrors.ConfigError, "voice client is not configured")
	}
	return ValidateFormat(format)
}
