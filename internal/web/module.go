package web

import (
	"github.com/ghaggin/expenses/internal/metrics"
	"github.com/ghaggin/expenses/internal/middleware"
	"github.com/ghaggin/expenses/internal/repository"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		New,
		metrics.New,
		middleware.NewSessionManager,
		repository.New,
	),
)
