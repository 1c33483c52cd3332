package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/pkg/rag/analyzer"
	"analytics-assistant-be/pkg/rag/planner"
)

// EventType is the tag of the SSE event union SO emits, per spec.md
// section 4.8: user|thought|plan|navigation|answer|chat|confirmation|
// cluster_prediction|glow_on|complete|error.
type EventType string

const (
	EventUser              EventType = "user"
	EventThought           EventType = "thought"
	EventPlan              EventType = "plan"
	EventNavigation        EventType = "navigation"
	EventAnswer            EventType = "answer"
	EventChat              EventType = "chat"
	EventConfirmation      EventType = "confirmation"
	EventClusterPrediction EventType = "cluster_prediction"
	EventGlowOn            EventType = "glow_on"
	EventComplete          EventType = "complete"
	EventError             EventType = "error"
)

// Event is SO's internal representation of one streamed step. Content is
// always the human-readable line spec.md section 3 requires on every
// event; the remaining fields are type-specific and only populated for
// the Type that needs them. MarshalJSON folds them into a "data" payload
// so the wire form matches the documented {type, content, data?}
// envelope regardless of which Go field happens to carry the detail.
type Event struct {
	Type     EventType
	Content  string
	Plan     []planner.Entry
	URL      string
	Answer   *analyzer.AnalysisResult
	ParentID uint
	ChildID  uint
	Kind     apperrors.Kind
}

type wireEvent struct {
	Type    EventType      `json:"type"`
	Content string         `json:"content"`
	Data    map[string]any `json:"data,omitempty"`
}

// MarshalJSON emits the {type, content, data?} shape spec.md sections 3
// and 6 document. This is also what pkg/eventbus publishes verbatim to
// NATS for session audit, so the audit trail and the SSE wire share one
// envelope.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Type: e.Type, Content: e.Content}

	switch e.Type {
	case EventPlan:
		entries := make([]map[string]string, len(e.Plan))
		for i, p := range e.Plan {
			entries[i] = map[string]string{"product_id": p.ProductID, "reason": p.Reason}
		}
		w.Data = map[string]any{"plan": entries}
	case EventNavigation:
		w.Data = map[string]any{"url": e.URL}
	case EventAnswer:
		w.Data = map[string]any{"answer": e.Answer}
	case EventClusterPrediction:
		w.Data = map[string]any{"parent_id": e.ParentID, "child_id": e.ChildID}
	case EventError:
		w.Data = map[string]any{"kind": string(e.Kind)}
	}

	return json.Marshal(w)
}

func userEvent(question string) Event {
	return Event{Type: EventUser, Content: question}
}

func thoughtEvent(text string) Event {
	return Event{Type: EventThought, Content: text}
}

func planEvent(entries []planner.Entry) Event {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	return Event{Type: EventPlan, Content: "Plan: " + strings.Join(ids, ", "), Plan: entries}
}

func navigationEvent(url string) Event {
	return Event{Type: EventNavigation, Content: url, URL: url}
}

func answerEvent(result *analyzer.AnalysisResult) Event {
	return Event{Type: EventAnswer, Content: result.Answer, Answer: result}
}

func chatEvent(content string) Event {
	return Event{Type: EventChat, Content: content}
}

// confirmationEvent asks the client whether to proceed into deep
// analysis. The content string is fixed by spec.md section 8's scenario
// 3: confirmation("Deep analysis?").
func confirmationEvent() Event {
	return Event{Type: EventConfirmation, Content: "Deep analysis?"}
}

func clusterPredictionEvent(parentID, childID uint) Event {
	return Event{
		Type:     EventClusterPrediction,
		Content:  fmt.Sprintf("Matched cluster %d/%d", parentID, childID),
		ParentID: parentID,
		ChildID:  childID,
	}
}

func glowOnEvent() Event {
	return Event{Type: EventGlowOn, Content: "Deep research mode engaged"}
}

func completeEvent() Event {
	return Event{Type: EventComplete, Content: "Done"}
}

func errorEvent(kind apperrors.Kind, message string) Event {
	return Event{Type: EventError, Content: message, Kind: kind}
}
