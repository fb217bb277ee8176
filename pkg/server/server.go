// Package server exposes the credit ledger and dispatcher over HTTP, so
// multiple creative-tool processes can share one authoritative ledger.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliancristea/xeno-ai/pkg/dispatch"
	"github.com/emiliancristea/xeno-ai/pkg/ledger"
	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// Server is the xenoai HTTP service.
type Server struct {
	logger     *log.Logger
	listen     string
	ledger     *ledger.Ledger
	dispatcher *dispatch.Dispatcher
	registry   *registry.Registry
	metrics    http.Handler
}

// New creates a Server wired with the core components.
func New(logger *log.Logger, listen string, led *ledger.Ledger, d *dispatch.Dispatcher, reg *registry.Registry) *Server {
	return &Server{
		logger:     logger,
		listen:     listen,
		ledger:     led,
		dispatcher: d,
		registry:   reg,
	}
}

// EnableMetrics mounts a /metrics endpoint serving the given gatherer.
func (s *Server) EnableMetrics(g prometheus.Gatherer) {
	s.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/balance", s.handleBalance)
		r.Get("/balance/check", s.handleBalanceCheck)
		r.Post("/credits", s.handleAddCredits)
		r.Get("/history", s.handleHistory)
		r.Post("/dispatch", s.handleDispatch)
		r.Get("/providers", s.handleProviders)
		r.Get("/providers/{id}", s.handleProvider)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return r
}

// ListenAndServe starts the service with graceful shutdown on ctx cancel.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("xenoai service listening", "addr", s.listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{"balance": s.ledger.Balance()})
}

func (s *Server) handleBalanceCheck(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount < 0 {
		writeJSONError(w, http.StatusBadRequest, "amount must be a non-negative integer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"amount":     amount,
		"can_afford": s.ledger.CanAfford(amount),
	})
}

// addCreditsRequest is the body of POST /v1/credits.
type addCreditsRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) handleAddCredits(w http.ResponseWriter, r *http.Request) {
	var req addCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		req.Reason = "credit_purchase"
	}

	tx, err := s.ledger.AddCredits(r.Context(), req.Amount, req.Reason)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("add credits failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "credit grant failed")
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	history := s.ledger.History(limit)
	if history == nil {
		history = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, history)
}

// dispatchRequest is the body of POST /v1/dispatch.
type dispatchRequest struct {
	models.AIRequest
	Chain []string `json:"chain,omitempty"`
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OperationType == "" {
		writeJSONError(w, http.StatusBadRequest, "operation_type is required")
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), req.AIRequest, req.Chain)
	switch resp.Error {
	case "":
		writeJSON(w, http.StatusOK, resp)
	case dispatch.CodeInsufficientCredits:
		writeJSON(w, http.StatusPaymentRequired, resp)
	case dispatch.CodeAllProvidersFailed:
		writeJSON(w, http.StatusBadGateway, resp)
	default:
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

// providerStatus is the JSON shape returned for provider listings.
type providerStatus struct {
	ID        string          `json:"id"`
	Available bool            `json:"available"`
	Billing   registry.Policy `json:"billing"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	ids := s.registry.IDs()
	out := make([]providerStatus, 0, len(ids))
	for _, id := range ids {
		out = append(out, providerStatus{
			ID:        id,
			Available: s.registry.IsAvailable(id),
			Billing:   s.registry.BillingPolicy(id),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProvider(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.registry.Get(id); !ok {
		writeJSONError(w, http.StatusNotFound, "provider not configured")
		return
	}
	writeJSON(w, http.StatusOK, providerStatus{
		ID:        id,
		Available: s.registry.IsAvailable(id),
		Billing:   s.registry.BillingPolicy(id),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"code":%d}}`, message, code)
}
