package payment

import (
	"github.com/smallbiznis/launchpad/internal/payment/adapters/stripe"
	"github.com/smallbiznis/launchpad/internal/payment/repository"
	"github.com/smallbiznis/launchpad/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(stripe.New),
	fx.Provide(repository.NewWebhookRepository),
	fx.Provide(webhook.NewService),
)
