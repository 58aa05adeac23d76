package subscription

import (
	"github.com/smallbiznis/launchpad/internal/subscription/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.repository",
	fx.Provide(repository.NewRepository),
)
