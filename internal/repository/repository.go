package repository

import (
	"context"
	"fmt"

	"github.com/ghaggin/expenses/internal/config"
	"github.com/ghaggin/expenses/internal/metrics"
	"github.com/ghaggin/expenses/internal/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// StatusError is returned for a non-2xx backend response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status code %d", e.Code)
}

// Repository is the expenses backend contract.
type Repository interface {
	ListExpenses(ctx context.Context, s *model.Session) ([]model.Expense, error)
	CreateExpense(ctx context.Context, s *model.Session, e *model.NewExpense) error
}

type Params struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Collector
}

// New returns the remote HTTP backend, or the local JSON file backend when
// no base url is configured.
func New(p Params) (Repository, error) {
	if p.Config.API.BaseURL == "" {
		p.Log.Info("using local json backend", zap.String("path", p.Config.API.FilePath))
		return NewJSON(p)
	}
	return NewHTTP(p)
}
