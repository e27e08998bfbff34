package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mediabrowser/internal/catalog"
	"mediabrowser/internal/config"
	"mediabrowser/internal/docstore"
	"mediabrowser/internal/events"
	"mediabrowser/internal/identity"
	"mediabrowser/internal/library"
	"mediabrowser/internal/pathsafe"
	"mediabrowser/internal/session"
)

type server struct {
	router      chi.Router
	catalog     *catalog.Catalog
	users       *identity.Service
	sessions    *session.Manager
	library     *library.Service
	staticDir   string
	uploadLimit int64
	closers     []io.Closer
}

func newServer(ctx context.Context, cfg config.Config, publisher events.Publisher) (*server, error) {
	root, err := pathsafe.New(cfg.MediaRoot)
	if err != nil {
		return nil, err
	}

	s := &server{
		catalog: catalog.New(root, catalog.Options{
			Deny:        cfg.Denylist(),
			SearchLimit: cfg.SearchLimit,
		}),
		staticDir:   cfg.StaticDirectory,
		uploadLimit: cfg.UploadLimit,
	}

	store, err := s.openStore(cfg)
	if err != nil {
		return nil, err
	}

	scheme, err := identity.ParseScheme(cfg.CredentialScheme)
	if err != nil {
		return nil, err
	}
	s.users = identity.NewService(store, identity.Options{
		Scheme:        scheme,
		AdminPassword: cfg.AdminPassword,
	})
	created, err := s.users.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if created {
		slog.Info("created admin account", "username", identity.AdminUsername)
	}

	s.sessions, err = session.NewManager(session.Options{
		Secret: []byte(cfg.SessionSecret),
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.SecureCookies,

		ErrorWriter: writeError,
	})
	if err != nil {
		return nil, err
	}

	s.library = library.NewService(store, library.Options{
		HistoryLimit: cfg.HistoryLimit,
		Publisher:    publisher,
	})

	s.router = s.routes()
	return s, nil
}

func (s *server) openStore(cfg config.Config) (docstore.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		if err := os.MkdirAll(cfg.DataDirectory, 0o755); err != nil {
			return nil, err
		}
		store, err := docstore.NewSQLStore(filepath.Join(cfg.DataDirectory, "media.db"))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, store)
		return store, nil
	case config.StoreFile:
		return docstore.NewFileStore(cfg.DataDirectory)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (s *server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(middleware.GetHead)
	r.Use(s.sessions.Verifier())

	r.Get("/healthz", getHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/files", s.getFiles)
		r.Get("/search", s.getSearch)

		r.Post("/register", s.postRegister)
		r.Post("/login", s.postLogin)
		r.Get("/me", s.getMe)
		r.Post("/logout", s.postLogout)

		r.Get("/history", s.getHistory)
		r.Post("/history", s.postHistory)

		r.Get("/playlists", s.getPlaylists)

		r.Group(func(r chi.Router) {
			r.Use(s.sessions.RequireAuthenticated)
			r.Post("/playlists", s.postPlaylist)
			r.Delete("/playlists/{id}", s.deletePlaylist)
			r.Post("/mkdir", s.postMkdir)
			r.Post("/upload", s.postUpload)
		})

		r.With(s.sessions.RequireAdmin).Post("/delete", s.postDelete)
	})

	r.Get("/media/*", s.getMedia)
	r.NotFound(s.serveStatic)
	return r
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			slog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")

		if r.Method == http.MethodOptions {
			if h := r.Header.Get("Access-Control-Request-Headers"); h != "" {
				w.Header().Set("Access-Control-Allow-Headers", h)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
