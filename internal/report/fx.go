package report

import (
	"github.com/riparohq/riparo/internal/report/repository"
	"github.com/riparohq/riparo/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
