package auth

import (
	"github.com/smallbiznis/launchpad/internal/auth/identity"
	"github.com/smallbiznis/launchpad/internal/auth/service"
	"github.com/smallbiznis/launchpad/internal/auth/session"
	"github.com/smallbiznis/launchpad/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(identity.New),
	fx.Provide(token.NewVerifier),
	fx.Provide(service.New),
	session.Module,
)
