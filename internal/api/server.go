package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/soochol/medsum/internal/medsum"
	"github.com/soochol/medsum/internal/metrics"
	"github.com/soochol/medsum/internal/storage"
)

const defaultMaxUploadBytes = 50 << 20 // 50MB

// ReportPipeline is the report service as seen by the HTTP layer.
type ReportPipeline interface {
	Upload(ctx context.Context, owner medsum.Principal, docs []medsum.UploadedDocument) (*medsum.UploadResult, error)
	Retrieve(ctx context.Context, id string) (*medsum.Report, error)
}

// Authenticator is the account service as seen by the HTTP layer.
type Authenticator interface {
	Signup(ctx context.Context, name, email, password string) (*medsum.User, string, error)
	Login(ctx context.Context, email, password string) (*medsum.User, string, error)
	VerifyToken(ctx context.Context, token string) (medsum.Principal, error)
	ResolveAPIKey(ctx context.Context, key string) (medsum.Principal, error)
}

type Server struct {
	reports        ReportPipeline
	auth           Authenticator
	uploads        *storage.Spool
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewServer(reports ReportPipeline, auth Authenticator, uploads *storage.Spool) *Server {
	return &Server{
		reports:        reports,
		auth:           auth,
		uploads:        uploads,
		maxUploadBytes: defaultMaxUploadBytes,
		logger:         slog.Default(),
	}
}

// SetMaxUploadBytes caps the multipart body size of report uploads.
func (s *Server) SetMaxUploadBytes(n int64) {
	if n > 0 {
		s.maxUploadBytes = n
	}
}

// SetLogger replaces the logger used by handlers.
func (s *Server) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
	}))

	r.Get("/", s.health)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.signup)
			r.Post("/login", s.login)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/upload", s.uploadReport)
			r.Get("/{id}", s.getReport)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("Medical summary backend is running!"))
}
