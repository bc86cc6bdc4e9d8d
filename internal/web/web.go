package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ghaggin/expenses/internal/config"
	"github.com/ghaggin/expenses/internal/metrics"
	"github.com/ghaggin/expenses/internal/middleware"
	"github.com/ghaggin/expenses/internal/repository"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Server struct {
	log    *zap.Logger
	server *http.Server
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Config   *config.Config
	Sessions *middleware.SessionManager
	Repo     repository.Repository
	Metrics  *metrics.Collector
}

func New(p Params) (*Server, error) {
	return &Server{
		log: p.Log,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", p.Config.Server.Host, p.Config.Server.Port),
			Handler:           NewRouter(p),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func NewRouter(p Params) chi.Router {
	h := &handler{
		log:      p.Log,
		sessions: p.Sessions,
		repo:     p.Repo,
	}

	root := chi.NewRouter()
	root.Use(chimw.RequestID)
	root.Use(middleware.Logger(p.Log, p.Metrics))
	root.Use(chimw.Recoverer)

	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
	if p.Config.Metrics.Enabled {
		root.Handle(p.Config.Metrics.Path, p.Metrics.Handler())
	}

	root.Group(func(r chi.Router) {
		r.Use(p.Sessions.Wrap)

		// Session
		r.Get("/", h.signIn)
		r.Post("/session", h.startSession)
		r.Post("/logout", h.logout)

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Use(p.Sessions.RequireSession)
			r.Get("/", h.showExpenses)
			r.Post("/", h.submitDraft)
			r.Post("/form", h.toggleForm)
			r.Post("/refresh", h.refresh)
			r.Get("/{id}/delete", h.confirmDelete)
			r.Post("/{id}/delete", h.deleteExpense)
		})
	})

	return root
}

// RegisterHooks should be invoked by fx
func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	s.log.Info("serving expenses", zap.String("addr", s.server.Addr))
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("error running server", zap.Error(err))
		}
	}()
	return nil
}
