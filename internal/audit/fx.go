package audit

import (
	"github.com/riparohq/riparo/internal/audit/repository"
	"github.com/riparohq/riparo/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
