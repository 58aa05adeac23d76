package billing

import (
	"github.com/smallbiznis/launchpad/internal/cache"
	"github.com/smallbiznis/launchpad/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(cache.NewCatalogCache),
	fx.Provide(service.NewService),
	fx.Provide(service.NewCatalogService),
)
