package malfunction

import (
	"github.com/riparohq/riparo/internal/malfunction/repository"
	"github.com/riparohq/riparo/internal/malfunction/service"
	"go.uber.org/fx"
)

var Module = fx.Module("malfunction.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
