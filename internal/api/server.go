// Package api exposes the loan origination flow over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"instantcredit-agents/internal/common/database"
	commonerrors "instantcredit-agents/internal/common/errors"
	"instantcredit-agents/internal/common/logger"
	"instantcredit-agents/internal/common/observability"
	"instantcredit-agents/internal/creditbureau"
	"instantcredit-agents/internal/directory"
	"instantcredit-agents/internal/dispatcher"
	"instantcredit-agents/internal/kyc"
	"instantcredit-agents/internal/notify"
	"instantcredit-agents/internal/session"
	"instantcredit-agents/internal/transcript"
	"instantcredit-agents/internal/underwriting"
)

// Server wires the dispatcher and its collaborators into the HTTP
// surface. Transcript and notifier are optional; nil disables them.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	sessions   *session.Store
	directory  directory.Directory
	bureau     *creditbureau.Service
	engine     *underwriting.Engine
	verifier   kyc.Verifier
	notifier   *notify.Notifier
	transcript *transcript.Indexer
	redis      *database.RedisClient
	obs        *observability.Observability
	logger     logger.Logger
	router     *chi.Mux
}

type Options struct {
	Dispatcher *dispatcher.Dispatcher
	Sessions   *session.Store
	Directory  directory.Directory
	Bureau     *creditbureau.Service
	Engine     *underwriting.Engine
	Verifier   kyc.Verifier
	Notifier   *notify.Notifier
	Transcript *transcript.Indexer
	Redis      *database.RedisClient
	Obs        *observability.Observability
	Logger     logger.Logger
}

func NewServer(opts Options) *Server {
	s := &Server{
		dispatcher: opts.Dispatcher,
		sessions:   opts.Sessions,
		directory:  opts.Directory,
		bureau:     opts.Bureau,
		engine:     opts.Engine,
		verifier:   opts.Verifier,
		notifier:   opts.Notifier,
		transcript: opts.Transcript,
		redis:      opts.Redis,
		obs:        opts.Obs,
		logger:     opts.Logger.WithFields(map[string]interface{}{"component": "http-server"}),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/conversation/start", s.handleStartConversation)
		r.Post("/conversation/turn", s.handleTurn)
		r.Post("/crm/verify", s.handleVerify)
		r.Post("/credit-bureau/score", s.handleScore)
		r.Post("/underwriting/evaluate", s.handleEvaluate)
		r.Post("/sanction-letter/generate", s.handleGenerateLetter)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

// respondDomainError maps the standardized error codes to HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case commonerrors.IsValidation(err):
		respondError(w, http.StatusBadRequest, "invalid request", err)
	case commonerrors.IsNotFound(err):
		respondError(w, http.StatusNotFound, "customer not found", err)
	case commonerrors.IsCollaborator(err):
		respondError(w, http.StatusBadGateway, "upstream service failed", err)
	case commonerrors.IsLetterNotAvailable(err):
		respondError(w, http.StatusConflict, "sanction letter not available", err)
	default:
		respondError(w, http.StatusInternalServerError, "internal error", err)
	}
}
