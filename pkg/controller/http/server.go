package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/storevoice/pkg/usecase"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
	"github.com/secmon-lab/storevoice/pkg/utils/safe"
)

const (
	// maxJSONBody bounds JSON request bodies
	maxJSONBody = 1 << 20
	// maxUploadBody bounds multipart audio uploads
	maxUploadBody = 32 << 20
)

type Server struct {
	router         *chi.Mux
	uc             *usecase.UseCases
	operatorSecret string
	production     bool
	allowedOrigins []string
}

type Options func(*Server)

// WithOperatorSecret guards operator endpoints. An empty secret leaves them open.
func WithOperatorSecret(secret string) Options {
	return func(s *Server) {
		s.operatorSecret = secret
	}
}

// WithProduction hides internal error details from 5xx responses
func WithProduction(production bool) Options {
	return func(s *Server) {
		s.production = production
	}
}

// WithAllowedOrigins enables CORS for storefronts embedding the widget. "*" allows any origin.
func WithAllowedOrigins(origins []string) Options {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(corsMiddleware(s.allowedOrigins))
	}

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Widget endpoints
		r.Post("/chat", s.chatHandler)
		r.Get("/agent/settings", s.agentSettingsHandler)
		r.Get("/memory", s.getMemoryHandler)
		r.Post("/memory", s.postMemoryHandler)
		r.Post("/voice/upload", s.voiceUploadHandler)
		r.Post("/quotation/send", s.quotationHandler)

		// Operator endpoints
		r.Group(func(r chi.Router) {
			r.Use(operatorGuard(s.operatorSecret))
			r.Get("/woocommerce/products", s.productsHandler)
			r.Get("/voice/sessions", s.voiceSessionsHandler)
			r.Get("/agents/{agentID}/conversations", s.conversationsHandler)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	safe.WriteJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
