package assignment

import (
	"github.com/riparohq/riparo/internal/assignment/repository"
	"github.com/riparohq/riparo/internal/assignment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("assignment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
