package controller_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/controller"
	"analytics-assistant-be/pkg/voice"
)

func TestHealthReportsVoiceDisabledWithoutProvider(t *testing.T) {
	app := fiber.New()
	c := controller.NewHealthController(voice.NewClient(nil))
	c.RegisterRoutes(app)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["agent_initialized"])
	assert.Equal(t, false, body["voice_initialized"])
}
