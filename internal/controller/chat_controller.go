package controller

import (
	"bufio"
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"analytics-assistant-be/internal/dto"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/internal/pkg/serverutils"
	"analytics-assistant-be/pkg/rag/orchestrator"
	"analytics-assistant-be/pkg/rag/visitor"
)

// sessionOrchestrator is the narrow interface ChatController depends on,
// satisfied by *orchestrator.Orchestrator.
type sessionOrchestrator interface {
	Run(ctx context.Context, question string, mode orchestrator.Mode) <-chan orchestrator.Event
}

// analyticsVisitor is the narrow interface used by the analytics-visit
// endpoint, satisfied by *visitor.Visitor.
type analyticsVisitor interface {
	Visit(ctx context.Context, parentID, childID uint) (visitor.Result, error)
}

// sessionPublisher is the narrow interface used to fire-and-forget publish
// a session's terminal event, satisfied by *eventbus.Bus.
type sessionPublisher interface {
	PublishSessionEvent(sessionID string, ev orchestrator.Event)
}

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Stream(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	AnalyticsVisit(ctx *fiber.Ctx) error
}

type chatController struct {
	orchestrator sessionOrchestrator
	visitor      analyticsVisitor
	bus          sessionPublisher
	log          logger.ILogger
}

func NewChatController(so sessionOrchestrator, visit analyticsVisitor, bus sessionPublisher, log logger.ILogger) IChatController {
	return &chatController{orchestrator: so, visitor: visit, bus: bus, log: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("stream", c.Stream)
	h.Post("", c.Chat)
	h.Post("analytics-visit", c.AnalyticsVisit)
}

func resolveMode(raw string) orchestrator.Mode {
	if raw == "" {
		return orchestrator.ModeAuto
	}
	return orchestrator.Mode(raw)
}

// Stream drives POST /api/chat/stream: an SSE frame per event, closing the
// connection as soon as a terminal event has been written. A client
// disconnect cancels ctx, which the orchestrator observes between steps.
func (c *chatController) Stream(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionID := uuid.NewString()
	events := c.orchestrator.Run(ctx.Context(), req.Message, resolveMode(req.Mode))

	serverutils.SSEWriter(ctx, func(w *bufio.Writer) error {
		for ev := range events {
			if err := serverutils.WriteSSEEvent(w, toEventDTO(ev)); err != nil {
				return err
			}
			if ev.Type == orchestrator.EventComplete || ev.Type == orchestrator.EventError {
				c.bus.PublishSessionEvent(sessionID, ev)
			}
		}
		return nil
	})
	return nil
}

// Chat drives POST /api/chat: the same run, collapsed into one JSON
// response for testing, per spec.md section 6.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionID := uuid.NewString()
	events := c.orchestrator.Run(ctx.Context(), req.Message, resolveMode(req.Mode))

	var out dto.ChatResponse
	for ev := range events {
		out.Events = append(out.Events, toEventDTO(ev))
		if ev.Type == orchestrator.EventComplete || ev.Type == orchestrator.EventError {
			c.bus.PublishSessionEvent(sessionID, ev)
		}
	}

	return ctx.JSON(out)
}

func (c *chatController) AnalyticsVisit(ctx *fiber.Ctx) error {
	var req dto.AnalyticsVisitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	result, err := c.visitor.Visit(ctx.Context(), req.ParentClusterID, req.ChildClusterID)
	if err != nil {
		return err
	}

	return ctx.JSON(dto.AnalyticsVisitResponse{URL: result.URL, Discussion: result.Discussion})
}

// toEventDTO converts an orchestrator.Event to the {type, content, data?}
// wire shape spec.md sections 3 and 6 document, keeping the orchestrator
// package out of the transport layer's JSON contract.
func toEventDTO(ev orchestrator.Event) dto.ChatEventDTO {
	out := dto.ChatEventDTO{Type: string(ev.Type), Content: ev.Content}

	switch ev.Type {
	case orchestrator.EventPlan:
		entries := make([]dto.PlanEntryDTO, len(ev.Plan))
		for i, e := range ev.Plan {
			entries[i] = dto.PlanEntryDTO{ProductID: e.ProductID, Reason: e.Reason}
		}
		out.Data = map[string]any{"plan": entries}
	case orchestrator.EventNavigation:
		out.Data = map[string]any{"url": ev.URL}
	case orchestrator.EventAnswer:
		out.Data = map[string]any{"answer": dto.AnswerDTO{
			Answer:     ev.Answer.Answer,
			Rationale:  ev.Answer.Rationale,
			KeyMetrics: ev.Answer.KeyMetrics,
		}}
	case orchestrator.EventClusterPrediction:
		out.Data = map[string]any{"parent_id": ev.ParentID, "child_id": ev.ChildID}
	case orchestrator.EventError:
		out.Data = map[string]any{"kind": string(ev.Kind)}
	}

	return out
}
