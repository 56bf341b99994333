// Package server provides the HTTP REST API for the content pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/inkpipe/inkpipe/internal/config"
	"github.com/inkpipe/inkpipe/internal/db"
	"github.com/inkpipe/inkpipe/internal/interview"
	"github.com/inkpipe/inkpipe/internal/llm"
	"github.com/inkpipe/inkpipe/internal/observability"
	"github.com/inkpipe/inkpipe/internal/orchestrator"
	"github.com/inkpipe/inkpipe/internal/research"
	"github.com/inkpipe/inkpipe/internal/server/ratelimit"
	"github.com/inkpipe/inkpipe/internal/sources"
	"github.com/inkpipe/inkpipe/internal/writer"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	cfg         *config.Config
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	tracer      *observability.Tracer
	metrics     *observability.Collector
	validate    *validator.Validate

	llmClient    llm.Client
	research     *research.Engine
	interview    *interview.Engine
	writer       *writer.Engine
	orchestrator *orchestrator.Orchestrator
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmConfig := llm.DefaultConfig()
	llmConfig.RequestsPerSecond = cfg.LLMRateLimit
	llmConfig.Burst = cfg.LLMBurst
	llmConfig.CallTimeout = cfg.LLMCallTimeout
	llmClient, err := llm.NewClient(ctx, llmConfig, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &Server{
		db:          database,
		cfg:         cfg,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig(cfg.RateLimitEnabled, cfg.DefaultRateLimit, cfg.DefaultRateWindow)),
		jwtService:  NewJWTService(cfg.JWTSecret, 0),
		tracer:      observability.NewTracer(cfg.TraceMaxAge, cfg.SweepInterval),
		metrics:     observability.NewCollector(cfg.MetricsWindow),
		validate:    validator.New(),
		llmClient:   llmClient,
	}

	s.research = research.NewEngine(database, sources.SelectProvider(cfg.ResearchProvider, cfg.SourceEndpoints), research.Options{
		RelevanceThreshold: cfg.RelevanceThreshold,
		MinDistinctSources: cfg.MinDistinctSources,
		MaxResults:         cfg.MaxResults,
		SourceFanout:       cfg.SourceFanout,
		PerSourceLimit:     cfg.PerSourceLimit,
		QueryTimeout:       cfg.SourceQueryTimeout,
	})
	s.interview = interview.NewEngine(database, llmClient, cfg.CompletionThreshold)
	s.writer = writer.NewEngine(database, llmClient)
	s.orchestrator = orchestrator.New(
		orchestrator.NewSessionManager(cfg.SessionTimeout, cfg.HistoryCap),
		s.interview, s.research, database, s.tracer, s.metrics,
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Artifact CRUD
	mux.Handle("POST /v1/artifacts", s.requireAuth(s.handleCreateArtifact))
	mux.Handle("GET /v1/artifacts", s.requireAuth(s.handleListArtifacts))
	mux.Handle("GET /v1/artifacts/{id}", s.requireAuth(s.handleGetArtifact))
	mux.Handle("PATCH /v1/artifacts/{id}", s.requireAuth(s.handleUpdateStatus))
	mux.Handle("DELETE /v1/artifacts/{id}", s.requireAuth(s.handleDeleteArtifact))
	mux.Handle("GET /v1/artifacts/{id}/events", s.requireAuth(s.handleListEvents))

	// Research stage
	mux.Handle("POST /v1/artifacts/{id}/research", s.requireAuth(s.handleRunResearch))
	mux.Handle("POST /v1/artifacts/{id}/research/stream", s.requireAuth(s.handleRunResearchStream))
	mux.Handle("GET /v1/artifacts/{id}/research", s.requireAuth(s.handleGetResearch))
	mux.Handle("DELETE /v1/artifacts/{id}/research", s.requireAuth(s.handleDeleteResearch))

	// Interview stage
	mux.Handle("POST /v1/artifacts/{id}/interview/start", s.requireAuth(s.handleStartInterview))
	mux.Handle("POST /v1/artifacts/{id}/interview/turns", s.requireAuth(s.handleRecordTurn))
	mux.Handle("POST /v1/artifacts/{id}/interview/complete", s.requireAuth(s.handleCompleteInterview))
	mux.Handle("GET /v1/artifacts/{id}/interview/turns", s.requireAuth(s.handleListTurns))

	// Writing stages
	mux.Handle("POST /v1/artifacts/{id}/skeleton", s.requireAuth(s.handleBuildSkeleton))
	mux.Handle("POST /v1/artifacts/{id}/draft", s.requireAuth(s.handleWriteDraft))
	mux.Handle("POST /v1/artifacts/{id}/humanize", s.requireAuth(s.handleHumanizeDraft))
	mux.Handle("POST /v1/artifacts/{id}/finalize", s.requireAuth(s.handleFinalize))

	// Conversational entry point
	mux.Handle("POST /v1/chat", s.requireAuth(s.handleChat))
	mux.Handle("POST /v1/chat/stream", s.requireAuth(s.handleChatStream))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withTracing(s.withLogging(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for streamed pipeline stages
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.tracer != nil {
		s.tracer.Stop()
	}
	_ = s.llmClient.Close()

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withRateLimit enforces the fixed-window limiter, keyed by the
// authenticated subject when present and the client IP otherwise.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := s.extractSubject(r)

		allowed, info := s.rateLimiter.Allow(subject, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withTracing opens a span per request and echoes the trace id back.
func (s *Server) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := observability.TraceIDFromRequest(r)
		span := s.tracer.StartSpan(traceID, r.Method+" "+r.URL.Path, nil)
		w.Header().Set(observability.TraceHeader, span.TraceID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.metrics.RecordRequest(r.URL.Path, time.Since(start), rec.status >= http.StatusInternalServerError)
		if rec.status >= http.StatusInternalServerError {
			s.tracer.FailSpan(span.ID, fmt.Errorf("request failed with status %d", rec.status))
		} else {
			s.tracer.CompleteSpan(span.ID)
		}
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// statusRecorder captures the response status for metrics and tracing.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush passes through so streamed responses keep working behind the recorder.
func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// errorFromErr maps an internal error to its HTTP response.
func (s *Server) errorFromErr(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractSubject identifies the caller for rate limiting: the bearer token's
// user id when valid, the client IP otherwise.
func (s *Server) extractSubject(r *http.Request) string {
	if claims := s.claimsFromRequest(r); claims != nil {
		return claims.UserID.String()
	}
	return clientIP(r)
}

// claimsFromRequest parses the bearer token without enforcing it;
// requireAuth does the enforcement.
func (s *Server) claimsFromRequest(r *http.Request) *Claims {
	token, ok := bearerToken(r)
	if !ok {
		return nil
	}
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil
	}
	return claims
}

// clientIP extracts the client address from the request.
// In the future, this could use X-Forwarded-For (only from trusted proxies).
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
