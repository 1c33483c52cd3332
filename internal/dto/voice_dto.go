package dto

// TTSRequest is the shared body of POST /api/voice/tts,
// /api/voice/tts/stream, and /api/voice/tts/with-timestamps.
type TTSRequest struct {
	Text         string `json:"text" validate:"required"`
	VoiceID      string `json:"voice_id"`
	OutputFormat string `json:"output_format" validate:"required,oneof=wav pcm opus"`
}

// TTSWithTimestampsResponse mirrors voice.TimestampedAudio on the wire.
type TTSWithTimestampsResponse struct {
	AudioBase64 string         `json:"audio_base64"`
	Timestamps  []TimestampDTO `json:"timestamps"`
}

type TimestampDTO struct {
	Text  string  `json:"text"`
	Start float64 `json:"start_s"`
	Stop  float64 `json:"stop_s"`
}

// STTRequest is the body of POST /api/voice/stt.
type STTRequest struct {
	AudioBase64 string `json:"audio_base64" validate:"required"`
	InputFormat string `json:"input_format" validate:"required,oneof=wav pcm opus"`
}

// STTResponse is the body of POST /api/voice/stt's response.
type STTResponse struct {
	Transcript string `json:"transcript"`
}

// STTStreamChunkRequest is one frame of the client->server body used to
// drive POST /api/voice/stt/stream (sent as a stream of JSON lines, one
// chunk per line, terminated by is_final=true).
type STTStreamChunkRequest struct {
	AudioChunk  string `json:"audio_chunk" validate:"required"`
	IsFinal     bool   `json:"is_final"`
	InputFormat string `json:"input_format" validate:"required,oneof=wav pcm opus"`
}
