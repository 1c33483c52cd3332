package bootstrap

import (
	"context"
	"log"

	"gorm.io/gorm"

	"analytics-assistant-be/internal/config"
	"analytics-assistant-be/internal/controller"
	"analytics-assistant-be/internal/pkg/logger"
	"analytics-assistant-be/pkg/artifact"
	"analytics-assistant-be/pkg/catalog"
	"analytics-assistant-be/pkg/clusterindex"
	"analytics-assistant-be/pkg/embedding"
	embeddingfactory "analytics-assistant-be/pkg/embedding/factory"
	"analytics-assistant-be/pkg/eventbus"
	"analytics-assistant-be/pkg/llm"
	llmfactory "analytics-assistant-be/pkg/llm/factory"
	"analytics-assistant-be/pkg/rag/analyzer"
	"analytics-assistant-be/pkg/rag/clusterpredictor"
	"analytics-assistant-be/pkg/rag/orchestrator"
	"analytics-assistant-be/pkg/rag/planner"
	"analytics-assistant-be/pkg/rag/visitor"
	"analytics-assistant-be/pkg/report"
	"analytics-assistant-be/pkg/voice"
	"analytics-assistant-be/pkg/voice/httpvoice"
)

// domainTokens and glowTriggerPhrases are SO's auto-mode tunables
// (spec.md section 4.8's Open Question resolutions); not sourced from
// config since they name product vocabulary, not deployment concerns.
var domainTokens = []string{"analysis", "cluster", "backlog", "frequency", "trend", "priority", "geographic", "population"}
var glowTriggerPhrases = []string{"deep dive", "deep analysis", "dig into", "root cause"}

// Container wires every process-wide, read-mostly component (spec.md
// section 5) once at startup and exposes the controllers the server
// registers routes for.
type Container struct {
	HealthController  controller.IHealthController
	ChatController    controller.IChatController
	ClusterController controller.IClusterController
	ReportController  controller.IReportController
	VoiceController   controller.IVoiceController

	EventBus *eventbus.Bus
	Voice    *voice.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	cat, err := catalog.Load("config/catalog.yaml")
	if err != nil {
		log.Fatalf("[FATAL] Failed to load catalog: %v", err)
	}

	artifactStore := artifact.NewStore(artifact.Config{
		Dir:                 cfg.Artifact.Dir,
		SummaryPreviewRows:  cfg.Artifact.SummaryPreviewRows,
		LLMInputBudgetChars: cfg.Artifact.LLMInputBudgetChars,
		RedisURL:            cfg.Redis.URL,
	}, cat, sysLogger)

	llmProvider, err := llmfactory.NewLLMProvider(cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.LLM.Provider, cfg.LLM.Model)
	llmClient := llm.NewClient(llmProvider, cfg.LLM.CallTimeout, cfg.LLM.RetryBackoff, cfg.LLM.RetryBackoffMax, sysLogger)

	embeddingProvider, err := embeddingfactory.NewEmbeddingProvider(cfg.Embedding.Provider, cfg.Embedding.APIKey, cfg.Embedding.BaseURL, cfg.Embedding.Model)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Embedding.Provider, cfg.Embedding.Model)
	embeddingClient := embedding.NewClient(embeddingProvider, cfg.Embedding.Dimension)

	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.Cluster.LoadTimeout)
	defer cancel()
	clusterIndex, err := clusterindex.Load(loadCtx, db, cfg.Embedding.Dimension)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load cluster index: %v", err)
	}

	var voiceProvider voice.Provider
	if cfg.Voice.Enabled {
		voiceProvider = httpvoice.New(cfg.Voice.APIKey, cfg.Voice.BaseURL, "", "")
		log.Printf("[INFO] Voice Client enabled")
	} else {
		log.Printf("[WARN] VOICE_API_KEY not set, voice endpoints will report disabled")
	}
	voiceClient := voice.NewClient(voiceProvider)

	bus := eventbus.New(cfg.Events.NatsURL, sysLogger)
	if !bus.Enabled() {
		log.Printf("[WARN] Event bus disabled, session audit events will not be published")
	}

	sampleCtx, cancelSample := context.WithTimeout(context.Background(), cfg.Cluster.LoadTimeout)
	defer cancelSample()
	sampleSummary, err := artifactStore.LoadSummary(sampleCtx, "frequency_over_time")
	if err != nil {
		log.Fatalf("[FATAL] Failed to load sample-context preview: %v", err)
	}

	pl := planner.New(llmClient, cat)
	an := analyzer.New(llmClient)
	cp := clusterpredictor.New(llmClient, embeddingClient, clusterIndex, sysLogger)

	so := orchestrator.New(
		cat,
		artifactStore,
		pl,
		an,
		cp,
		llmClient,
		sampleSummary.Render(),
		orchestrator.Config{DomainTokens: domainTokens, GlowTriggerPhrases: glowTriggerPhrases},
		sysLogger,
	)

	visit := visitor.New(cat, clusterIndex, llmClient)
	rb := report.New(cat, artifactStore, sysLogger)

	return &Container{
		HealthController:  controller.NewHealthController(voiceClient),
		ChatController:    controller.NewChatController(so, visit, bus, sysLogger),
		ClusterController: controller.NewClusterController(cp),
		ReportController:  controller.NewReportController(rb, clusterIndex),
		VoiceController:   controller.NewVoiceController(voiceClient),

		EventBus: bus,
		Voice:    voiceClient,
	}
}
