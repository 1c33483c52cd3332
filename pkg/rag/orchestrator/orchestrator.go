// Package orchestrator implements the Session Orchestrator (SO): the
// single-operation request driver, run(question, mode) -> event stream,
// that owns the deep-analysis, chat, and auto mode flows from spec.md
// section 4.8. The event-channel/backpressure pattern is grounded on
// internal/websocket/hub.go's buffered-channel client send, adapted from
// a fan-out hub to one bounded producer-consumer pipe per session.
package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"analytics-assistant-be/internal/apperrors"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/catalog"
	"analytics-assistant-be/pkg/clusterindex"
	"analytics-assistant-be/pkg/rag/analyzer"
	"analytics-assistant-be/pkg/rag/planner"
)

// Planner, Analyzer, ClusterPredictor, ArtifactStore, and TextGenerator
// are the narrow interfaces SO depends on, satisfied by
// pkg/rag/planner.Planner, pkg/rag/analyzer.Analyzer,
// pkg/rag/clusterpredictor.Predictor, pkg/artifact.Store, and
// pkg/llm.Client respectively. Depending on interfaces here (rather than
// those concrete types) keeps SO's own tests free of real LLM/HTTP calls.
type Planner interface {
	Plan(ctx context.Context, question, sampleContext string) (*planner.Plan, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, question string, accessLog *analyzer.AccessLog, summaries []*artifact.Summary) (*analyzer.AnalysisResult, error)
}

type ClusterPredictor interface {
	Predict(ctx context.Context, question string) (clusterindex.Prediction, error)
}

type ArtifactStore interface {
	LoadSummary(ctx context.Context, productID string) (*artifact.Summary, error)
}

type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// eventBufferSize is the bounded SSE channel size from spec.md section 5:
// a slow client naturally backpressures upstream LC/VC work rather than
// growing an unbounded queue.
const eventBufferSize = 16

type Mode string

const (
	ModeDeepAnalysis Mode = "deep_analysis"
	ModeChat         Mode = "chat"
	ModeAuto         Mode = "auto"
)

var analysisTokenPattern = regexp.MustCompile(`(?i)\banalysis\b`)

const assistantPersonaTemplate = `You are a helpful analytics dashboard assistant. Answer the user's message conversationally and concisely.

User: %s`

// Config carries the tunables spec.md leaves to configuration: which
// literal tokens in a chat message should trigger CP, and which phrases
// should turn on the "glow" deep-research UI hint.
type Config struct {
	DomainTokens       []string
	GlowTriggerPhrases []string
}

type Orchestrator struct {
	catalog          *catalog.Catalog
	artifactStore    ArtifactStore
	planner          Planner
	analyzer         Analyzer
	clusterPredictor ClusterPredictor
	llm              TextGenerator
	sampleContext    string
	cfg              Config
	log              logger.ILogger
}

func New(
	cat *catalog.Catalog,
	artifactStore ArtifactStore,
	planner Planner,
	analyzer Analyzer,
	clusterPredictor ClusterPredictor,
	llmClient TextGenerator,
	sampleContext string,
	cfg Config,
	log logger.ILogger,
) *Orchestrator {
	return &Orchestrator{
		catalog:          cat,
		artifactStore:    artifactStore,
		planner:          planner,
		analyzer:         analyzer,
		clusterPredictor: clusterPredictor,
		llm:              llmClient,
		sampleContext:    sampleContext,
		cfg:              cfg,
		log:              log,
	}
}

// Run drives one request to completion and returns the event stream. The
// channel is closed once a terminal event (complete or error) has been
// sent, or immediately once ctx is cancelled.
func (so *Orchestrator) Run(ctx context.Context, question string, mode Mode) <-chan Event {
	ch := make(chan Event, eventBufferSize)
	go func() {
		defer close(ch)
		so.dispatch(ctx, question, mode, ch)
	}()
	return ch
}

func (so *Orchestrator) dispatch(ctx context.Context, question string, mode Mode, ch chan Event) {
	switch mode {
	case ModeDeepAnalysis:
		so.runDeepAnalysis(ctx, question, ch)
	case ModeChat:
		so.runChat(ctx, question, ch)
	case ModeAuto:
		if analysisTokenPattern.MatchString(question) {
			so.emit(ctx, ch, confirmationEvent())
			return
		}
		so.runChat(ctx, question, ch)
	default:
		so.emit(ctx, ch, errorEvent(apperrors.ConfigError, fmt.Sprintf("unknown session mode %q", mode)))
	}
}

func (so *Orchestrator) runDeepAnalysis(ctx context.Context, question string, ch chan Event) {
	if !so.emit(ctx, ch, userEvent(question)) {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if !so.emit(ctx, ch, thoughtEvent("Planning")) {
		return
	}

	plan, err := so.planner.Plan(ctx, question, so.sampleContext)
	if err != nil {
		so.emitError(ctx, ch, err)
		return
	}
	if !so.emit(ctx, ch, planEvent(plan.Entries)) {
		return
	}

	accessLog := &analyzer.AccessLog{}
	summaries := make([]*artifact.Summary, 0, len(plan.Entries))
	navigationSent := false

	for _, entry := range plan.Entries {
		if ctx.Err() != nil {
			return
		}
		if !so.emit(ctx, ch, thoughtEvent(fmt.Sprintf("Loading %s", entry.ProductID))) {
			return
		}

		summary, err := so.artifactStore.LoadSummary(ctx, entry.ProductID)
		if err != nil {
			so.emitError(ctx, ch, err)
			return
		}
		accessLog.Record(entry.ProductID, summary.Shape, analyzer.SourceSummary)
		summaries = append(summaries, summary)

		if !navigationSent {
			if product, pErr := so.catalog.Get(entry.ProductID); pErr == nil && product.RouteHint != "" {
				if !so.emit(ctx, ch, navigationEvent(product.RouteHint)) {
					return
				}
				navigationSent = true
			}
		}
	}

	if ctx.Err() != nil {
		return
	}
	if !so.emit(ctx, ch, thoughtEvent("Analyzing")) {
		return
	}

	result, err := so.analyzer.Analyze(ctx, question, accessLog, summaries)
	if err != nil {
		so.emitError(ctx, ch, err)
		return
	}
	if !so.emit(ctx, ch, answerEvent(result)) {
		return
	}

	if so.clusterPredictor != nil {
		if ctx.Err() != nil {
			return
		}
		pred, err := so.clusterPredictor.Predict(ctx, question)
		if err != nil {
			so.emitError(ctx, ch, err)
			return
		}
		if !so.emit(ctx, ch, clusterPredictionEvent(pred.ParentID, pred.ChildID)) {
			return
		}
	}

	so.emit(ctx, ch, completeEvent())
}

func (so *Orchestrator) runChat(ctx context.Context, question string, ch chan Event) {
	if !so.emit(ctx, ch, userEvent(question)) {
		return
	}

	if so.clusterPredictor != nil && containsAny(question, so.cfg.DomainTokens) {
		if ctx.Err() != nil {
			return
		}
		pred, err := so.clusterPredictor.Predict(ctx, question)
		if err != nil {
			so.emitError(ctx, ch, err)
			return
		}
		if !so.emit(ctx, ch, clusterPredictionEvent(pred.ParentID, pred.ChildID)) {
			return
		}
	}

	if containsAny(question, so.cfg.GlowTriggerPhrases) {
		if !so.emit(ctx, ch, glowOnEvent()) {
			return
		}
	}

	if ctx.Err() != nil {
		return
	}
	prompt := fmt.Sprintf(assistantPersonaTemplate, question)
	text, err := so.llm.GenerateText(ctx, prompt)
	if err != nil {
		so.emitError(ctx, ch, err)
		return
	}
	if !so.emit(ctx, ch, chatEvent(text)) {
		return
	}

	so.emit(ctx, ch, completeEvent())
}

// emit sends ev, blocking under backpressure, and returns false if the
// session was cancelled before the send completed. A false return means
// the caller must stop: no further events, no complete.
func (so *Orchestrator) emit(ctx context.Context, ch chan Event, ev Event) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (so *Orchestrator) emitError(ctx context.Context, ch chan Event, err error) {
	kind := apperrors.KindOf(err)
	message := err.Error()
	if e, ok := apperrors.As(err); ok {
		message = e.Message
	}
	so.log.Warn("orchestrator", "session terminated with error", map[string]interface{}{"kind": string(kind), "message": message})
	so.emit(ctx, ch, errorEvent(kind, message))
}

func containsAny(text string, needles []string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if n == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
