package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Shivamm1101/doc-ai/internal/api/handlers"
	appMiddleware "github.com/Shivamm1101/doc-ai/internal/api/middlewares"
	"github.com/Shivamm1101/doc-ai/internal/logger"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer builds and wires all routes.
func NewServer(port string, docs *handlers.DocumentHandler, search *handlers.SearchHandler, log *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           newRouter(docs, search, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

func newRouter(docs *handlers.DocumentHandler, search *handlers.SearchHandler, log *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		// ingestion runs inside the request and carries its own deadline
		api.Post("/documents/upload", docs.UploadDocument)

		api.Group(func(q chi.Router) {
			q.Use(middleware.Timeout(60 * time.Second))
			q.Get("/documents", docs.GetDocuments)
			q.Get("/documents/{id}", docs.GetDocument)
			q.Get("/documents/{id}/cost-items", docs.GetCostItems)
			q.Post("/search", search.Search)
			q.Get("/records/search", search.Records)
		})
	})
	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
