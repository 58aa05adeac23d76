package customer

import (
	"github.com/smallbiznis/launchpad/internal/customer/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.repository",
	fx.Provide(repository.NewRepository),
)
