package servicecenter

import (
	"github.com/riparohq/riparo/internal/servicecenter/repository"
	"github.com/riparohq/riparo/internal/servicecenter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("servicecenter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
