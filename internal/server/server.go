// Package server exposes message validation, health and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/health"
	"github.com/glimte/hedwig-go/interceptors"
	"github.com/glimte/hedwig-go/metrics"
	"github.com/glimte/hedwig-go/schema"
	"github.com/glimte/hedwig-go/serialization"
)

const maxBodyBytes = 1 << 20

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the Prometheus registry metrics are registered with and served from
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// Server validates hedwig messages posted to /validate
type Server struct {
	logger    *slog.Logger
	registry  *prometheus.Registry
	checker   *health.SchemaChecker
	validator atomic.Pointer[schema.MessageValidator]
	format    *schema.FormatValidator
	chain     *interceptors.InterceptorChain
}

// Response is the body returned by /validate
type Response struct {
	Valid      bool                  `json:"valid"`
	MessageID  string                `json:"message_id,omitempty"`
	Reason     string                `json:"reason,omitempty"`
	Error      string                `json:"error,omitempty"`
	Violations []contracts.Violation `json:"violations,omitempty"`
}

// New creates a server validating against doc
func New(doc *schema.Document, opts ...Option) (*Server, error) {
	s := &Server{
		logger:   slog.Default(),
		registry: prometheus.NewRegistry(),
		checker:  health.NewSchemaChecker(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Install(doc); err != nil {
		return nil, err
	}
	format, err := schema.NewFormatValidator(schema.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build format validator: %w", err)
	}
	s.format = format

	s.chain = interceptors.NewDefaultInterceptorChainBuilder(s.logger).
		WithLogging().
		WithLabeledMetrics(metrics.NewPrometheusCollector(s.registry), s.messageType).
		WithValidation(interceptors.MessageValidatorFunc(s.validate)).
		Build()

	return s, nil
}

// Install swaps in doc for all following requests
func (s *Server) Install(doc *schema.Document) error {
	validator, err := schema.NewMessageValidator(doc, schema.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.validator.Store(validator)
	s.checker.Install(doc)
	return nil
}

// Reload loads the schema document at path and installs it. On failure the
// current document stays in use and the failure is reported by /healthz.
func (s *Server) Reload(path string, routes contracts.RouteTable) error {
	doc, err := schema.LoadDocumentFile(path, routes, schema.WithLogger(s.logger))
	if err != nil {
		s.checker.Reject(err)
		s.logger.Error("schema reload failed, keeping current document", "path", path, "error", err)
		return err
	}
	if err := s.Install(doc); err != nil {
		s.checker.Reject(err)
		return err
	}
	s.logger.Info("schema document reloaded", "path", path, "root", doc.RootID())
	return nil
}

func (s *Server) validate(ctx context.Context, msg contracts.Message) error {
	return s.validator.Load().Validate(ctx, msg)
}

// messageType labels metrics only with types the installed document defines
func (s *Server) messageType(msg contracts.Message) string {
	if t, ok := s.validator.Load().Document().MessageType(msg.GetSchema()); ok {
		return t
	}
	return interceptors.UnknownMessageType
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /validate", s.handleValidate)
	mux.Handle("GET /healthz", health.Handler(s.checker))
	mux.Handle("GET /readyz", health.ReadinessHandler(s.checker))
	mux.Handle("GET /livez", health.LivenessHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("validation server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down validation server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeResponse(w, http.StatusBadRequest, Response{Error: err.Error()})
		return
	}

	raw, err := serialization.Decode(body)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, Response{Error: err.Error()})
		return
	}

	if err := s.format.Validate(raw); err != nil {
		writeResponse(w, http.StatusUnprocessableEntity, failure("", err))
		return
	}

	var msg contracts.BaseMessage
	if err := serialization.Convert(raw, &msg); err != nil {
		writeResponse(w, http.StatusBadRequest, Response{Error: err.Error()})
		return
	}

	accept := interceptors.MessageHandlerFunc(func(ctx context.Context, msg contracts.Message) error {
		return nil
	})
	if err := s.chain.Execute(r.Context(), &msg, accept); err != nil {
		writeResponse(w, http.StatusUnprocessableEntity, failure(msg.GetID(), err))
		return
	}

	writeResponse(w, http.StatusOK, Response{Valid: true, MessageID: msg.GetID()})
}

func failure(id string, err error) Response {
	return Response{
		MessageID:  id,
		Reason:     interceptors.ErrorType(err),
		Error:      err.Error(),
		Violations: schema.Violations(err),
	}
}

func writeResponse(w http.ResponseWriter, status int, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
