package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/orchestrator"
	"github.com/brucewavesmarket/open-deep-research/internal/progress"
	"github.com/brucewavesmarket/open-deep-research/internal/resilience"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
	"github.com/brucewavesmarket/open-deep-research/internal/telemetry"
)

func main() {
	query := flag.String("query", "", "research query to run; if empty, the worker just serves /metrics and waits for SIGTERM")
	testMode := flag.Bool("test-anthropic", false, "run the synthesis connectivity smoke test and exit")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	features, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	researchCfg := config.ResearchFromEnvOrDefaults(features)

	if err := telemetry.Initialize(telemetry.Config{
		Enabled:     getEnvOrDefault("TRACING_ENABLED", "false") == "true",
		ServiceName: getEnvOrDefault("SERVICE_NAME", "research-orchestrator"),
	}, logger); err != nil {
		logger.Warn("tracing initialization failed, continuing without spans", zap.Error(err))
	}

	metricsPort := getEnvOrDefaultInt("METRICS_PORT", 9090)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		server := &http.Server{
			Addr:         ":" + strconv.Itoa(metricsPort),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		logger.Info("metrics server listening", zap.Int("port", metricsPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	llmWrapper := resilience.NewHTTPWrapper(&http.Client{Timeout: 60 * time.Second}, "llm-service", 0, 0, logger)
	searchWrapper := resilience.NewHTTPWrapper(&http.Client{Timeout: 30 * time.Second}, "search-service", 0, 0, logger)

	llm := llmclient.NewHTTPClient("", llmWrapper, logger)
	search := searchclient.NewHTTPClient("", os.Getenv("SEARCH_SERVICE_API_KEY"), searchWrapper, logger)

	var synthesis llmclient.Client
	if key := os.Getenv("SYNTHESIS_API_KEY"); key != "" {
		synthesisWrapper := resilience.NewHTTPWrapper(&http.Client{Timeout: 120 * time.Second}, "synthesis-service", 0, 0, logger)
		synthesis = llmclient.NewHTTPClient(os.Getenv("SYNTHESIS_SERVICE_URL"), synthesisWrapper, logger)
	}

	progressManager := progress.NewManager(getEnvOrDefaultInt("STREAMING_RING_CAPACITY", 256))
	sink := progress.NewSafeSink(progressManager, logger)

	o := &orchestrator.Orchestrator{
		LLM:          llm,
		Search:       search,
		SynthesisLLM: synthesis,
		Sink:         sink,
		Config:       researchCfg,
		Logger:       logger,
	}

	if *testMode {
		runOnce(o, orchestrator.Input{Query: "connectivity check", TestAnthropicMode: true}, logger)
		return
	}

	if *query != "" {
		runOnce(o, orchestrator.Input{Query: *query}, logger)
		return
	}

	logger.Info("no query supplied, idling; serving /metrics until signalled")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down research worker")
}

func runOnce(o *orchestrator.Orchestrator, in orchestrator.Input, logger *zap.Logger) {
	runID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	out, err := o.Run(ctx, runID, in)
	if err != nil {
		logger.Fatal("research run failed", zap.Error(err))
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal("failed to encode run output", zap.Error(err))
	}
	fmt.Println(string(encoded))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
