package web

import (
	"testing"

	"github.com/ghaggin/expenses/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Test_Module_graph(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = 18123

	err := fx.ValidateApp(
		fx.Supply(cfg),
		fx.Provide(zap.NewNop),
		Module,
		fx.Invoke(RegisterHooks),
	)
	if err != nil {
		t.Fatal(err)
	}
}
