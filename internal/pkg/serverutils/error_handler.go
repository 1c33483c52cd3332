package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"analytics-assistant-be/internal/apperrors"
)

// ErrorHandlerMiddleware centralizes the mapping from returned errors to the
// {kind, message} JSON body every non-streaming endpoint promises on
// failure. Streaming handlers (chat/stream, tts/stream, stt/stream) return
// errors here only before their stream opens (voice disabled, body parsing,
// validation); failures after that never reach this middleware.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorBody{Kind: "HTTPError", Message: fiberErr.Message})
		}

		if appErr, ok := apperrors.As(err); ok {
			status := apperrors.HTTPStatus(appErr.Kind)
			return ctx.Status(status).JSON(ErrorBody{Kind: string(appErr.Kind), Message: appErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorBody{Kind: "InternalError", Message: err.Error()})
	}
}
