// Package voice provides the uniform TTS/STT contract used by the voice
// endpoints and the analysis-narration flow, against a single REST-backed
// provider in the same raw net/http idiom as pkg/llm and pkg/embedding.
package voice

import (
	"context"

	"analytics-assistant-be/internal/apperrors"
)

// Format is an audio container/encoding accepted by the voice client.
type Format string

const (
	FormatWAV  Format = "wav"
	FormatPCM  Format = "pcm"
	FormatOpus Format = "opus"
)

func ValidateFormat(f string) (Format, error) {
	switch Format(f) {
	case FormatWAV, FormatPCM, FormatOpus:
		return Format(f), nil
	default:
		return "", apperrors.Newf(apperrors.UnsupportedFormat, "unsupported audio format: %q", f)
	}
}

// Timestamp marks the word-level boundary an audio-synced subtitle UI
// reveals once its playhead reaches Start.
type Timestamp struct {
	Text  string  `json:"text"`
	Start float64 `json:"start_s"`
	Stop  float64 `json:"stop_s"`
}

type TimestampedAudio struct {
	AudioBase64 string      `json:"audio_bytes_b64"`
	Timestamps  []Timestamp `json:"timestamps"`
}

// AudioChunk is one unit of a streamed TTS response.
type AudioChunk struct {
	Data  []byte
	Final bool
}

// TranscriptEvent is one unit of a streamed STT response, mirroring the
// {type:transcript|complete|error} shape spec.md's stt_stream contract
// puts directly on the wire.
type TranscriptEvent struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Provider is the vendor-facing capability set VC normalizes over. A
// deployment with no configured voice vendor has no Provider at all —
// Client.Enabled() reports that instead of the caller inspecting a nil
// provider directly.
type Provider interface {
	TTS(ctx context.Context, text, voiceID string, format Format) ([]byte, error)
	TTSStream(ctx context.Context, text, voiceID string, format Format) (<-chan AudioChunk, <-chan error)
	TTSWithTimestamps(ctx context.Context, text, voiceID string, format Format) (*TimestampedAudio, error)
	STT(ctx context.Context, audio []byte, format Format) (string, error)
	STTStream(ctx context.Context, chunks <-chan STTChunk) <-chan TranscriptEvent
}

// STTChunk is one unit of client-submitted streaming audio.
type STTChunk struct {
	Audio []byte
	Final bool
}
