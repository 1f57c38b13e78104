package gateway

import (
	"context"
	"errors"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

// Invoker is the subset of *rongcloud.Client exposed over HTTP.
type Invoker interface {
	Invoke(ctx context.Context, name string, params rongcloud.Params) (*rongcloud.Response, error)
	SendAs(ctx context.Context, action rongcloud.Action, params rongcloud.Params, ct rongcloud.ContentType) (*rongcloud.Response, error)
	BlacklistAdd(ctx context.Context, userID, blackUserID string) (rongcloud.PairResult, error)
	BlacklistRemove(ctx context.Context, userID, blackUserID string) (rongcloud.PairResult, error)
}

// Server exposes the RongCloud action catalog as a small JSON API.
type Server struct {
	invoker      Invoker
	logger       zerolog.Logger
	maxBodyBytes int64
}

// Option customises the server.
type Option func(*Server)

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBodyBytes = limit
		}
	}
}

// NewServer constructs a gateway around invoker.
func NewServer(invoker Invoker, logger zerolog.Logger, opts ...Option) (*Server, error) {
	if invoker == nil {
		return nil, errors.New("gateway: invoker dependency is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	s := &Server{
		invoker:      invoker,
		logger:       logger.With().Str("component", "gateway").Logger(),
		maxBodyBytes: 1 << 20,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(echoRequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(withRequestLogging(s.logger))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/v1", func(v1 chi.Router) {
		v1.Get("/actions", s.listActions)
		v1.Post("/actions/{name}", s.invokeAction)
		v1.Post("/users/{userID}/blacklist/{blackUserID}", s.blacklistAdd)
		v1.Delete("/users/{userID}/blacklist/{blackUserID}", s.blacklistRemove)
	})

	return router
}
