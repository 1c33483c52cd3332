package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	"analytics-assistant-be/internal/bootstrap"
	"analytics-assistant-be/internal/config"
	"analytics-assistant-be/internal/server"
	"analytics-assistant-be/internal/tracer"
	"analytics-assistant-be/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.URL)
	if err != nil {
		log.Fatalf("database: unable to connect: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)
	printStartupBanner(cfg, container)

	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	container.EventBus.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("server: forced shutdown: %v", err)
	}
}

func printStartupBanner(cfg *config.Config, container *bootstrap.Container) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	status := func(ok bool) string {
		if ok {
			return green("enabled")
		}
		return yellow("disabled")
	}

	log.Printf("analytics-assistant-be starting on port %s (env=%s)", cfg.App.Port, cfg.App.Environment)
	log.Printf("  llm provider:   %s (%s)", cfg.LLM.Provider, cfg.LLM.Model)
	log.Printf("  voice client:   %s", status(container.Voice.Enabled()))
	log.Printf("  event bus:      %s", status(container.EventBus.Enabled()))
	log.Printf("  redis cache:    %s", status(cfg.Redis.URL != ""))
}
