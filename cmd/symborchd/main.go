// Command symborchd runs the Symbol Orchestration Core as a standalone HTTP
// daemon: it wires the LLM broker, tool dispatcher, toolbox, symbol locker,
// plan service, iterative search loop, and scratch-pad loop into one
// process and exposes them over a small go-chi surface, grounded on
// haasonsaas/nexus's internal/gateway.Server wiring and
// internal/gateway/http_server.go's production server lifecycle.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/symborch/core/internal/config"
	"github.com/symborch/core/internal/editorrpc"
	"github.com/symborch/core/internal/llmbroker"
	"github.com/symborch/core/internal/llmbroker/providers"
	"github.com/symborch/core/internal/llmtypes"
	"github.com/symborch/core/internal/observability"
	"github.com/symborch/core/internal/planservice"
	"github.com/symborch/core/internal/scratchpad"
	"github.com/symborch/core/internal/search"
	"github.com/symborch/core/internal/symbols"
	"github.com/symborch/core/internal/tooldispatch"
	"github.com/symborch/core/internal/toolbox"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	configFormat := flag.String("config-format", "yaml", "config file format: yaml or toml")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath, *configFormat)
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("symborchd exited with error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path, format string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	switch format {
	case "toml":
		return config.LoadTOML(path)
	case "yaml", "":
		return config.LoadYAML(path)
	default:
		return nil, fmt.Errorf("unknown config-format %q", format)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	tracer, shutdownTracer := observability.NewTracer(observability.TraceConfig{
		ServiceName: "symborchd",
		Endpoint:    cfg.Observability.OTLPEndpoint,
		SampleOneIn: cfg.Observability.TraceSampleOne,
	})
	defer shutdownTracer(context.Background())

	broker := newBroker(cfg.LLM, logger, metrics)
	editor := editorrpc.New(cfg.Editor.BaseURL)
	dispatcher := tooldispatch.NewDispatcher(editor, broker, nil, logger)
	dispatcher.SetMetrics(metrics)

	tb := toolbox.New(dispatcher, regexOutline{}, gitDiff{repoRoot: "."}, func(toolbox.Event) {})

	locker := symbols.NewLocker(func(ctx context.Context, fsFilePath, name string) (symbols.Snippet, error) {
		return tb.GrabSymbolContentFromDefinition(ctx, fsFilePath, name)
	})

	planSvc := planservice.NewService(
		&dispatcherStepGenerator{dispatcher: dispatcher},
		toolbox.AsPlanToolBox(tb),
		newPlanSymbolEditor(dispatcher, tb),
	)

	defaultProps := defaultLLMProperties(cfg.LLM)
	searchLoop := search.New(
		fileIndexAdapter{editor: editor},
		keywordIndexAdapter{dispatcher: dispatcher},
		textCaller{broker: broker, props: defaultProps, tool: "search_loop"},
	)
	searchLoop.SetMetrics(metrics)

	scratchLoop := scratchpad.New(symbolEditRequester{
		locker:     locker,
		dispatcher: dispatcher,
		tb:         tb,
		props: llmProperties{
			Provider: string(defaultProps.Provider),
			APIKey:   defaultProps.APIKeys.APIKey,
			Model:    string(defaultProps.Type),
		},
	}, logger)

	srv := &server{
		cfg:        cfg,
		logger:     logger,
		registry:   registry,
		metrics:    metrics,
		tracer:     tracer,
		dispatcher: dispatcher,
		planSvc:    planSvc,
		searchLoop: searchLoop,
		locker:     locker,
	}

	envEvents := make(chan scratchpad.EnvironmentEvent, 64)
	go scratchLoop.Run(context.Background(), envEvents)
	defer close(envEvents)

	return srv.listenAndServe()
}

// newBroker constructs a Broker with every configured provider registered
// and rate-limited, mirroring spec.md §4.A's multi-provider failover
// broker.
func newBroker(cfg config.LLMConfig, logger *slog.Logger, metrics *observability.Metrics) *llmbroker.Broker {
	opts := []llmbroker.Option{
		llmbroker.WithLogger(logger),
		llmbroker.WithMetrics(metrics),
	}
	if cfg.RateLimitRPS > 0 {
		for _, p := range []llmtypes.LlmProvider{llmtypes.ProviderAnthropic, llmtypes.ProviderOpenAI, llmtypes.ProviderGemini, llmtypes.ProviderBedrock} {
			opts = append(opts, llmbroker.WithRateLimit(p, cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
	}
	if cfg.FailoverPath != "" {
		if fallback, ok := cfg.Providers[cfg.FailoverPath]; ok {
			opts = append(opts, llmbroker.WithFailover(llmtypes.LlmProperties{
				Type:     llmtypes.LlmType(fallback.DefaultModel),
				Provider: llmtypes.LlmProvider(cfg.FailoverPath),
				APIKeys:  apiKeysFor(llmtypes.LlmProvider(cfg.FailoverPath), fallback),
			}))
		}
	}

	broker := llmbroker.NewBroker(opts...)
	broker.RegisterProvider(llmtypes.ProviderAnthropic, providers.NewAnthropicClient())
	broker.RegisterProvider(llmtypes.ProviderOpenAI, providers.NewOpenAIClient())
	broker.RegisterProvider(llmtypes.ProviderGemini, providers.NewGeminiClient())
	broker.RegisterProvider(llmtypes.ProviderBedrock, providers.NewBedrockClient())
	return broker
}

func apiKeysFor(provider llmtypes.LlmProvider, pc config.LLMProviderConfig) llmtypes.LlmProviderApiKeys {
	keys := llmtypes.LlmProviderApiKeys{Provider: provider, APIKey: pc.APIKey, BaseURL: pc.BaseURL}
	if provider == llmtypes.ProviderBedrock {
		keys.AWSRegion = pc.AWSRegion
	}
	return keys
}

func defaultLLMProperties(cfg config.LLMConfig) llmtypes.LlmProperties {
	provider := llmtypes.LlmProvider(cfg.DefaultProvider)
	if provider == "" {
		provider = llmtypes.ProviderAnthropic
	}
	pc := cfg.Providers[string(provider)]
	model := pc.DefaultModel
	if model == "" {
		model = "claude-sonnet"
	}
	return llmtypes.LlmProperties{
		Type:     llmtypes.LlmType(model),
		Provider: provider,
		APIKeys:  apiKeysFor(provider, pc),
	}
}

// server owns the HTTP surface over the wired core.
type server struct {
	cfg        *config.Config
	logger     *slog.Logger
	registry   *prometheus.Registry
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	dispatcher *tooldispatch.Dispatcher
	planSvc    *planservice.Service
	searchLoop *search.Loop
	locker     *symbols.Locker
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.traceAndMeasure)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Post("/v1/tools/{toolType}", s.handleInvokeTool)
	r.Post("/v1/plans", s.handleCreatePlan)
	r.Post("/v1/plans/{id}/execute", s.handleExecutePlan)
	r.Post("/v1/search", s.handleSearch)
	return r
}

// traceAndMeasure starts a span and records an HTTP request metric for
// every inbound call, exercising observability.Tracer's
// TraceHTTPRequest entry point.
func (s *server) traceAndMeasure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := s.tracer.TraceHTTPRequest(r.Context(), r.Method, r.URL.Path)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.metrics.RecordHTTPRequest(r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).Seconds())
	})
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"symbol_actors": s.locker.ActorCount(),
	})
}

func (s *server) handleInvokeTool(w http.ResponseWriter, r *http.Request) {
	toolType := tooldispatch.ToolType(chi.URLParam(r, "toolType"))
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	out, err := s.dispatcher.InvokeJSON(r.Context(), toolType, raw)
	if err != nil {
		writeToolError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func writeToolError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tooldispatch.ErrNoJSONSchema):
		status = http.StatusNotFound
	case errors.Is(err, tooldispatch.ErrSchemaValidation):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

type createPlanRequest struct {
	ID            string `json:"id"`
	UserQuery     string `json:"user_query"`
	UserContext   string `json:"user_context"`
	DeepReasoning bool   `json:"deep_reasoning"`
	StoragePath   string `json:"storage_path"`
	Provider      string `json:"provider"`
	APIKey        string `json:"api_key"`
	Model         string `json:"model"`
}

func (s *server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	plan, err := s.planSvc.CreatePlan(r.Context(), req.ID, req.UserQuery, req.UserContext, req.DeepReasoning, req.StoragePath,
		planservice.MessageProperties{Provider: req.Provider, APIKey: req.APIKey, Model: req.Model})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(plan)
}

type executePlanRequest struct {
	StoragePath string `json:"storage_path"`
	Until       int    `json:"until"`
	Provider    string `json:"provider"`
	APIKey      string `json:"api_key"`
	Model       string `json:"model"`
}

func (s *server) handleExecutePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req executePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	events := make(chan planservice.ProgressEvent, req.Until+1)
	err := s.planSvc.ExecutePlanUntil(r.Context(), id, req.StoragePath, req.Until,
		planservice.MessageProperties{Provider: req.Provider, APIKey: req.APIKey, Model: req.Model}, events)
	close(events)

	var progress []planservice.ProgressEvent
	for ev := range events {
		progress = append(progress, ev)
	}

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{"progress": progress}
	if err != nil {
		resp["error"] = err.Error()
		w.WriteHeader(http.StatusInternalServerError)
	}
	json.NewEncoder(w).Encode(resp)
}

type searchRequest struct {
	UserQuery string `json:"user_query"`
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	outcome, err := s.searchLoop.Run(r.Context(), req.UserQuery)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(outcome)
}

// listenAndServe runs the HTTP server until a termination signal arrives,
// then drains in-flight requests within the configured shutdown timeout.
func (s *server) listenAndServe() error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	listener, err := net.Listen("tcp", s.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.ListenAddr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	s.logger.Info("symborchd listening", "addr", s.cfg.Server.ListenAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	s.locker.Shutdown()
	return nil
}
