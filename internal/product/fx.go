package product

import (
	"github.com/riparohq/riparo/internal/product/repository"
	"github.com/riparohq/riparo/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
