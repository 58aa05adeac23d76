package profile

import (
	"github.com/smallbiznis/launchpad/internal/profile/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.repository",
	fx.Provide(repository.NewRepository),
)
