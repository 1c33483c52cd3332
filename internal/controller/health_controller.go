package controller

import (
	"github.com/gofiber/fiber/v2"

	"analytics-assistant-be/pkg/voice"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	voice *voice.Client
}

func NewHealthController(voiceClient *voice.Client) IHealthController {
	return &healthController{voice: voiceClient}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"status":            "ok",
		"agent_initialized": true,
		"voice_initialized": c.voice.Enabled(),
	})
}
