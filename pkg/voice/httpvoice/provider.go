// Package httpvoice implements voice.Provider against a REST voice vendor
// (Gradium-shaped: model_name/voice_id/output_format setup, word-level
// timestamps, streaming TTS and STT) using the same raw net/http idiom as
// pkg/llm and pkg/embedding — no vendor SDK appears anywhere in the
// reference corpus for any of LC, EI's embedding calls, or VC.
package httpvoice

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"analytics-assistant-be/pkg/voice"
)

const defaultModel = "default"

type Provider struct {
	APIKey     string
	BaseURL    string
	Model      string
	DefaultVoiceID string
	Client     *http.Client
}

func New(apiKey, baseURL, model, defaultVoiceID string) *Provider {
	if model == "" {
		model = defaultModel
	}
	return &Provider{
		APIKey:         apiKey,
		BaseURL:        baseURL,
		Model:          model,
		DefaultVoiceID: defaultVoiceID,
		Client:         &http.Client{Timeout: 60 * time.Second},
	}
}

var _ voice.Provider = &Provider{}

type ttsSetup struct {
	ModelName    string `json:"model_name"`
	VoiceID      string `json:"voice_id"`
	OutputFormat string `json:"output_format"`
}

type ttsRequest struct {
	Setup ttsSetup `json:"setup"`
	Text  string   `json:"text"`
}

type ttsResponse struct {
	RawDataB64        string           `json:"raw_data_b64"`
	TextWithTimestamps []timestampWire `json:"text_with_timestamps,omitempty"`
}

type timestampWire struct {
	Text    string  `json:"text"`
	StartS  float64 `json:"start_s"`
	StopS   float64 `json:"stop_s"`
}

func (p *Provider) setup(voiceID string, format voice.Format) ttsSetup {
	v := voiceID
	if v == "" {
		v = p.DefaultVoiceID
	}
	return ttsSetup{ModelName: p.Model, VoiceID: v, OutputFormat: string(format)}
}

func (p *Provider) TTS(ctx context.Context, text, voiceID string, format voice.Format) ([]byte, error) {
	resp, err := p.doTTS(ctx, "/v1/tts", ttsRequest{Setup: p.setup(voiceID, format), Text: text})
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(resp.RawDataB64)
}

func (p *Provider) TTSWithTimestamps(ctx context.Context, text, voiceID string, format voice.Format) (*voice.TimestampedAudio, error) {
	resp, err := p.doTTS(ctx, "/v1/tts", ttsRequest{Setup: p.setup(voiceID, format), Text: text})
	if err != nil {
		return nil, err
	}

	timestamps := make([]voice.Timestamp, 0, len(resp.TextWithTimestamps))
	for _, ts := range resp.TextWithTimestamps {
		timestamps = append(timestamps, voice.Timestamp{Text: ts.Text, Start: ts.StartS, Stop: ts.StopS})
	}

	return &voice.TimestampedAudio{
		AudioBase64: resp.RawDataB64,
		Timestamps:  timestamps,
	}, nil
}

func (p *Provider) doTTS(ctx context.Context, path string, reqBody ttsRequest) (*ttsResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts vendor error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed ttsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal tts response: %w", err)
	}
	return &parsed, nil
}

// TTSStream reads the vendor's chunked-transfer TTS-stream endpoint,
// forwarding each raw chunk on the returned channel as it arrives.
func (p *Provider) TTSStream(ctx context.Context, text, voiceID string, format voice.Format) (<-chan voice.AudioChunk, <-chan error) {
	out := make(chan voice.AudioChunk)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		payload, err := json.Marshal(ttsRequest{Setup: p.setup(voiceID, format), Text: text})
		if err != nil {
			errCh <- fmt.Errorf("marshal tts stream request: %w", err)
			return
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/tts/stream", bytes.NewReader(payload))
		if err != nil {
			errCh <- fmt.Errorf("create tts stream request: %w", err)
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+p.APIKey)

		resp, err := p.Client.Do(req)
		if err != nil {
			errCh <- fmt.Errorf("tts stream request failed: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errCh <- fmt.Errorf("tts vendor stream error: status %d, body: %s", resp.StatusCode, string(body))
			return
		}

		buf := make([]byte, 4096)
		for {
			n, readErr := resp.Body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case out <- voice.AudioChunk{Data: chunk}:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
			if readErr == io.EOF {
				out <- voice.AudioChunk{Final: true}
				return
			}
			if readErr != nil {
				errCh <- fmt.Errorf("tts stream read failed: %w", readErr)
				return
			}
		}
	}()

	return out, errCh
}

type sttRequest struct {
	InputFormat string `json:"input_format"`
	AudioB64    string `json:"audio_b64"`
}

type sttResponse struct {
	Transcript string `json:"transcript"`
}

func (p *Provider) STT(ctx context.Context, audio []byte, format voice.Format) (string, error) {
	reqBody := sttRequest{InputFormat: string(format), AudioB64: base64.StdEncoding.EncodeToString(audio)}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal stt request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/stt", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create stt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read stt response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt vendor error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var parsed sttResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal stt response: %w", err)
	}
	return parsed.Transcript, nil
}

// sttStreamFrame is one line of the vendor's newline-delimited-JSON
// streaming STT response.
type sttStreamFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// STTStream feeds chunks read from the input channel to the vendor over a
// single chunked-request body and demultiplexes its newline-delimited-JSON
// response into voice.TranscriptEvent values.
func (p *Provider) STTStream(ctx context.Context, chunks <-chan voice.STTChunk) <-chan voice.TranscriptEvent {
	out := make(chan voice.TranscriptEvent)

	go func() {
		defer close(out)

		pr, pw := io.Pipe()
		go func() {
			enc := json.NewEncoder(pw)
			for {
				select {
				case c, ok := <-chunks:
					if !ok {
						pw.Close()
						return
					}
					frame := struct {
						AudioB64 string `json:"audio_b64"`
						Final    bool   `json:"final"`
					}{AudioB64: base64.StdEncoding.EncodeToString(c.Audio), Final: c.Final}
					if err := enc.Encode(frame); err != nil {
						pw.CloseWithError(err)
						return
					}
					if c.Final {
						pw.Close()
						return
					}
				case <-ctx.Done():
					pw.CloseWithError(ctx.Err())
					return
				}
			}
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/stt/stream", pr)
		if err != nil {
			out <- voice.TranscriptEvent{Type: "error", Error: err.Error()}
			return
		}
		req.Header.Set("Content-Type", "application/x-ndjson")
		req.Header.Set("Authorization", "Bearer "+p.APIKey)

		resp, err := p.Client.Do(req)
		if err != nil {
			out <- voice.TranscriptEvent{Type: "error", Error: err.Error()}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			out <- voice.TranscriptEvent{Type: "error", Error: fmt.Sprintf("stt stream vendor error: status %d, body: %s", resp.StatusCode, string(body))}
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			var frame sttStreamFrame
			if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
				out <- voice.TranscriptEvent{Type: "error", Error: err.Error()}
				return
			}
			out <- voice.TranscriptEvent{Type: frame.Type, Text: frame.Text}
			if frame.Type == "complete" || frame.Type == "error" {
				return
			}
		}
	}()

	return out
}
