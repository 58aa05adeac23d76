package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/launchpad/internal/auth"
	authdomain "github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/auth/session"
	"github.com/smallbiznis/launchpad/internal/auth/token"
	"github.com/smallbiznis/launchpad/internal/authorization"
	"github.com/smallbiznis/launchpad/internal/billing"
	billingdomain "github.com/smallbiznis/launchpad/internal/billing/domain"
	"github.com/smallbiznis/launchpad/internal/checkout"
	checkoutdomain "github.com/smallbiznis/launchpad/internal/checkout/domain"
	"github.com/smallbiznis/launchpad/internal/config"
	"github.com/smallbiznis/launchpad/internal/customer"
	"github.com/smallbiznis/launchpad/internal/observability"
	obsmiddleware "github.com/smallbiznis/launchpad/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/launchpad/internal/observability/metrics"
	obstracing "github.com/smallbiznis/launchpad/internal/observability/tracing"
	"github.com/smallbiznis/launchpad/internal/organization"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	"github.com/smallbiznis/launchpad/internal/payment"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	"github.com/smallbiznis/launchpad/internal/price"
	"github.com/smallbiznis/launchpad/internal/product"
	"github.com/smallbiznis/launchpad/internal/profile"
	"github.com/smallbiznis/launchpad/internal/ratelimit"
	"github.com/smallbiznis/launchpad/internal/subscription"
	subscriptiondomain "github.com/smallbiznis/launchpad/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	billing.Module,
	checkout.Module,
	customer.Module,
	organization.Module,
	payment.Module,
	price.Module,
	product.Module,
	profile.Module,
	ratelimit.Module,
	subscription.Module,
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	authsvc       authdomain.Service
	sessions      *session.Manager
	verifier      *token.Verifier
	authzSvc      authorization.Service
	catalogSvc    billingdomain.CatalogService
	checkoutSvc   checkoutdomain.Service
	orgSvc        organizationdomain.Service
	subscriptions subscriptiondomain.Repository
	webhookSvc    paymentdomain.WebhookService
	authLimiter   *ratelimit.AuthActionLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	Authsvc       authdomain.Service
	Sessions      *session.Manager
	Verifier      *token.Verifier
	AuthzSvc      authorization.Service
	CatalogSvc    billingdomain.CatalogService
	CheckoutSvc   checkoutdomain.Service
	OrgSvc        organizationdomain.Service
	Subscriptions subscriptiondomain.Repository
	WebhookSvc    paymentdomain.WebhookService
	AuthLimiter   *ratelimit.AuthActionLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		authsvc:       p.Authsvc,
		sessions:      p.Sessions,
		verifier:      p.Verifier,
		authzSvc:      p.AuthzSvc,
		catalogSvc:    p.CatalogSvc,
		checkoutSvc:   p.CheckoutSvc,
		orgSvc:        p.OrgSvc,
		subscriptions: p.Subscriptions,
		webhookSvc:    p.WebhookSvc,
		authLimiter:   p.AuthLimiter,
	}

	svc.registerActionRoutes()
	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerActionRoutes() {
	actions := s.engine.Group("/actions")

	actions.POST("/signup", s.authActionRateLimit("signup"), s.SignUp)
	actions.POST("/login", s.authActionRateLimit("login"), s.Login)
	actions.POST("/logout", s.Logout)
	actions.POST("/checkout", s.OptionalAuth(), s.CreateCheckout)
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.GET("/oauth/:provider", s.OAuthStart)
	auth.GET("/callback", s.OAuthCallback)
	auth.GET("/confirm", s.ConfirmEmail)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/stripe/webhook", s.HandleStripeWebhook)

	orgs := api.Group("/organizations", s.AuthRequired())
	{
		orgs.POST("", s.CreateOrganization)
		orgs.GET("/:slug/pricing", s.GetPricing)
	}
}
