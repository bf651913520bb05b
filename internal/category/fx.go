package category

import (
	"github.com/riparohq/riparo/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRegistryFromConfig(cfg config.Config, log *zap.Logger) (*Registry, error) {
	return NewRegistry(log, cfg.CategoryConfigPaths...)
}

var Module = fx.Module("category",
	fx.Provide(
		newRegistryFromConfig,
		NewService,
	),
)
