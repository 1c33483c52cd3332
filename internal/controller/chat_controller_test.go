package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analytics-assistant-be/internal/controller"
	"analytics-assistant-be/pkg/rag/orchestrator"
	"analytics-assistant-be/pkg/rag/visitor"
)

type fakeOrchestrator struct {
	events []orchestrator.Event
}

func (f *fakeOrchestrator) Run(ctx context.Context, question string, mode orchestrator.Mode) <-chan orchestrator.Event {
	ch := make(chan orchestrator.Event, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	close(ch)
	return ch
}

type fakeVisitor struct {
	result visitor.Result
	err    error
}

func (f *fakeVisitor) Visit(ctx context.Context, parentID, childID uint) (visitor.Result, error) {
	return f.result, f.err
}

type recordingBus struct {
	published []orchestrator.Event
}

func (b *recordingBus) PublishSessionEvent(sessionID string, ev orchestrator.Event) {
	b.published = append(b.published, ev)
}

func TestChatMergedResponseCollectsAllEvents(t *testing.T) {
	app := newTestApp()
	so := &fakeOrchestrator{events: []orchestrator.Event{
		{Type: orchestrator.EventUser, Content: "hi"},
		{Type: orchestrator.EventChat, Content: "hello there"},
		{Type: orchestrator.EventComplete, Content: "Done"},
	}}
	bus := &recordingBus{}
	c := controller.NewChatController(so, &fakeVisitor{}, bus, nopLogger{})
	c.RegisterRoutes(app.Group("/api"))

	body, _ := json.Marshal(map[string]string{"message": "hi", "mode": "chat"})
	req, _ := http.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Events []struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		} `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Events, 3)
	assert.Equal(t, "hi", out.Events[0].Content)
	assert.Equal(t, "hello there", out.Events[1].Content)
	assert.Equal(t, "complete", out.Events[2].Type)
	assert.Len(t, bus.published, 1)
}

func TestAnalyticsVisitReturnsURLAndDiscussion(t *testing.T) {
	app := newTestApp()
	so := &fakeOrchestrator{}
	visit := &fakeVisitor{result: visitor.Result{URL: "/dashboard/analytics/frequency", Discussion: "here is the trend"}}
	c := controller.NewChatController(so, visit, &recordingBus{}, nopLogger{})
	c.RegisterRoutes(app.Group("/api"))

	body, _ := json.Marshal(map[string]any{"parent_cluster_id": 1, "child_cluster_id": 20})
	req, _ := http.NewRequest(http.MethodPost, "/api/chat/analytics-visit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "/dashboard/analytics/frequency", out["url"])
	assert.Equal(t, "here is the trend", out["discussion"])
}
