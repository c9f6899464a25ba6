package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_subs_normalize/internal/core/domain"
	"github.com/baditaflorin/go_subs_normalize/internal/ports"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	requestTimeout        = 30 * time.Second
)

// Runner normalizes one document.
type Runner interface {
	Run(ctx context.Context, text string) domain.Result
	RuleNames() []string
}

// Config holds HTTP server configuration.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int
}

// Response is the JSON form of a normalization result.
type Response struct {
	RequestID      string         `json:"request_id"`
	Output         string         `json:"output"`
	Changed        bool           `json:"changed"`
	RuleHits       map[string]int `json:"rule_hits"`
	DecodeFailures int            `json:"decode_failures"`
	ProcessingTime string         `json:"processing_time"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server exposes the normalizer over HTTP.
type Server struct {
	runner Runner
	logger ports.Logger
	config Config
	server *fasthttp.Server
}

// New creates a server; zero config values take the defaults.
func New(runner Runner, logger ports.Logger, config Config) *Server {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultReadTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultWriteTimeout
	}
	if config.MaxRequestSize <= 0 {
		config.MaxRequestSize = DefaultMaxRequestSize
	}

	s := &Server{runner: runner, logger: logger, config: config}
	s.server = &fasthttp.Server{
		Handler:               s.Handler,
		Name:                  "SubsNormalize",
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		MaxRequestBodySize:    config.MaxRequestSize,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
	}
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.config.Port)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "address", s.Addr())
		errCh <- s.server.ListenAndServe(s.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server...")
		if err := s.server.Shutdown(); err != nil {
			s.logger.Error("Error during server shutdown", "error", err)
			return err
		}
		s.logger.Info("Server stopped")
		return nil
	}
}

// Handler is the main fasthttp request handler
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()
	requestID := uuid.NewString()
	ctx.Response.Header.Set("X-Request-Id", requestID)

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/normalize":
		s.handleNormalize(ctx, requestID)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		s.writeJSONError(ctx, "Not found")
	}

	s.logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func (s *Server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"rules":  s.runner.RuleNames(),
	})
}

// handleNormalize normalizes the request body. The plain text result is
// returned unless format=json is requested.
func (s *Server) handleNormalize(ctx *fasthttp.RequestCtx, requestID string) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Request body is required")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result := s.runner.Run(c, string(body))

	if string(ctx.QueryArgs().Peek("format")) == "json" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		s.writeJSONResponse(ctx, Response{
			RequestID:      requestID,
			Output:         result.Output,
			Changed:        result.Changed,
			RuleHits:       result.RuleHits,
			DecodeFailures: result.DecodeFailures,
			ProcessingTime: result.Duration.String(),
		})
		return
	}

	hits, err := json.Marshal(result.RuleHits)
	if err == nil {
		ctx.Response.Header.Set("X-Rule-Hits", string(hits))
	}
	ctx.Response.Header.Set("X-Changed", fmt.Sprintf("%t", result.Changed))
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(result.Output)
}

// writeJSONResponse writes a JSON response to the context
func (s *Server) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	ctx.SetContentType("application/json")
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON response", "error", err)
		s.writeJSONError(ctx, "Internal server error")
		return
	}
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (s *Server) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	ctx.SetContentType("application/json")
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}
	ctx.SetBody(response)
}
