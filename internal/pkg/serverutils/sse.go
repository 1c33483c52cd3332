package serverutils

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// SSEWriter streams `data: <json>\n\n` frames to the client, per
// spec.md section 6. Fiber has no built-in SSE helper, so this is
// authored directly against Fiber's SetBodyStreamWriter, mirroring the
// header set + explicit-flush-per-event idiom the corpus's net/http SSE
// handlers use (there is no Fiber-native SSE example anywhere in the
// retrieved pack).
func SSEWriter(ctx *fiber.Ctx, stream func(w *bufio.Writer) error) {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		_ = stream(w)
	})
}

// WriteSSEEvent writes one JSON-encoded event as a `data: ...\n\n` frame
// and flushes it immediately, so a slow client sees each event as it's
// produced rather than buffered.
func WriteSSEEvent(w *bufio.Writer, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
