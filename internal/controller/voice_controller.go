package controller

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"analytics-assistant-be/internal/dto"
	"analytics-assistant-be/internal/pkg/serverutils"
	"analytics-assistant-be/pkg/voice"
)

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	TTS(ctx *fiber.Ctx) error
	TTSStream(ctx *fiber.Ctx) error
	TTSWithTimestamps(ctx *fiber.Ctx) error
	STT(ctx *fiber.Ctx) error
	STTStream(ctx *fiber.Ctx) error
}

type voiceController struct {
	voice *voice.Client
}

func NewVoiceController(voiceClient *voice.Client) IVoiceController {
	return &voiceController{voice: voiceClient}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/voice")
	h.Post("tts", c.TTS)
	h.Post("tts/stream", c.TTSStream)
	h.Post("tts/with-timestamps", c.TTSWithTimestamps)
	h.Post("stt", c.STT)
	h.Post("stt/stream", c.STTStream)
}

func contentTypeFor(format string) string {
	switch format {
	case "wav":
		return "audio/wav"
	case "opus":
		return "audio/opus"
	default:
		return "application/octet-stream"
	}
}

// errVoiceDisabled is the exact 503 spec.md section 6 promises when
// VOICE_API_KEY is absent, distinct from the ConfigError->500 mapping
// used for startup and report-render failures.
func errVoiceDisabled() error {
	return fiber.NewError(fiber.StatusServiceUnavailable, "voice client is not configured")
}

func (c *voiceController) TTS(ctx *fiber.Ctx) error {
	if !c.voice.Enabled() {
		return errVoiceDisabled()
	}
	var req dto.TTSRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	audio, err := c.voice.TTS(ctx.Context(), req.Text, req.VoiceID, req.OutputFormat)
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, contentTypeFor(req.OutputFormat))
	return ctx.Send(audio)
}

func (c *voiceController) TTSStream(ctx *fiber.Ctx) error {
	if !c.voice.Enabled() {
		return errVoiceDisabled()
	}
	var req dto.TTSRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	chunks, errCh := c.voice.TTSStream(ctx.Context(), req.Text, req.VoiceID, req.OutputFormat)

	ctx.Set(fiber.HeaderContentType, contentTypeFor(req.OutputFormat))
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for {
			select {
			case chunk, ok := <-chunks:
				if !ok {
					return
				}
				if _, err := w.Write(chunk.Data); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
				if chunk.Final {
					return
				}
			case err, ok := <-errCh:
				if ok && err != nil {
					return
				}
			}
		}
	})
	return nil
}

func (c *voiceController) TTSWithTimestamps(ctx *fiber.Ctx) error {
	if !c.voice.Enabled() {
		return errVoiceDisabled()
	}
	var req dto.TTSRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	result, err := c.voice.TTSWithTimestamps(ctx.Context(), req.Text, req.VoiceID, req.OutputFormat)
	if err != nil {
		return err
	}

	timestamps := make([]dto.TimestampDTO, len(result.Timestamps))
	for i, ts := range result.Timestamps {
		timestamps[i] = dto.TimestampDTO{Text: ts.Text, Start: ts.Start, Stop: ts.Stop}
	}

	return ctx.JSON(dto.TTSWithTimestampsResponse{
		AudioBase64: result.AudioBase64,
		Timestamps:  timestamps,
	})
}

func (c *voiceController) STT(ctx *fiber.Ctx) error {
	if !c.voice.Enabled() {
		return errVoiceDisabled()
	}
	var req dto.STTRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio_base64 is not valid base64")
	}

	transcript, err := c.voice.STT(ctx.Context(), audio, req.InputFormat)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.STTResponse{Transcript: transcript})
}

// STTStream reads a stream of newline-delimited STTStreamChunkRequest
// objects from the request body and streams back
// {type:transcript,text} | {type:complete} | {type:error} SSE frames, per
// spec.md section 6.
func (c *voiceController) STTStream(ctx *fiber.Ctx) error {
	if !c.voice.Enabled() {
		return errVoiceDisabled()
	}
	var requests []dto.STTStreamChunkRequest
	scanner := bufio.NewScanner(bytes.NewReader(ctx.Body()))
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var req dto.STTStreamChunkRequest
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}
		requests = append(requests, req)
	}

	var inputFormat string
	if len(requests) > 0 {
		inputFormat = requests[0].InputFormat
	}

	chunks := make(chan voice.STTChunk, len(requests))
	for _, req := range requests {
		audio, err := base64.StdEncoding.DecodeString(req.AudioChunk)
		if err != nil {
			continue
		}
		chunks <- voice.STTChunk{Audio: audio, Final: req.IsFinal}
	}
	close(chunks)

	events := c.voice.STTStream(ctx.Context(), inputFormat, chunks)

	serverutils.SSEWriter(ctx, func(w *bufio.Writer) error {
		for ev := range events {
			if err := serverutils.WriteSSEEvent(w, ev); err != nil {
				return err
			}
		}
		return nil
	})
	return nil
}
