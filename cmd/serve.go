package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/JJublanc/tidimondo-sub001/config"
	"github.com/JJublanc/tidimondo-sub001/logger"
	"github.com/JJublanc/tidimondo-sub001/routes"
	"github.com/JJublanc/tidimondo-sub001/services"
	"github.com/JJublanc/tidimondo-sub001/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	deps, err := buildDeps(ctx, db)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildDeps wires every service. AWS and Stripe integrations are only
// created when configured.
func buildDeps(ctx context.Context, db *gorm.DB) (routes.Deps, error) {
	var (
		images    services.ImageStore
		moderator services.ImageModerator
		mailer    services.Mailer
		push      *services.PushService
		gateway   services.PaymentGateway
	)

	if cfg.S3Bucket != "" {
		up, err := utils.NewS3Uploader(ctx, cfg.S3Region, cfg.S3Bucket, cfg.CloudFrontURL)
		if err != nil {
			return routes.Deps{}, err
		}
		images = up
		mod, err := utils.NewImageModerator(ctx, cfg.AWSRegion, cfg.ModerationMinScore)
		if err != nil {
			return routes.Deps{}, err
		}
		moderator = mod
	} else {
		logger.Warn("S3_BUCKET not set, image uploads disabled")
	}
	if cfg.SESSender != "" {
		m, err := utils.NewSESMailer(ctx, cfg.AWSRegion, cfg.SESSender)
		if err != nil {
			return routes.Deps{}, err
		}
		mailer = m
	}
	if cfg.SNSPlatformARN != "" {
		p, err := services.NewPushService(ctx, db, cfg.AWSRegion, cfg.SNSPlatformARN)
		if err != nil {
			return routes.Deps{}, err
		}
		push = p
	}
	if cfg.StripeSecretKey != "" {
		gateway = services.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	hub := services.NewRealtimeHub()
	bus := services.NewAlertBus(db, hub, push)
	ent := services.NewEntitlementService(db, cfg.Plans)

	return routes.Deps{
		Config:        cfg,
		Users:         services.NewUserService(db, cfg.IsAdminEmail),
		Entitlements:  ent,
		Stays:         services.NewStayService(db, ent),
		Participants:  services.NewParticipantService(db),
		Meals:         services.NewMealService(db, bus),
		Recipes:       services.NewRecipeService(db, ent, images),
		Ingredients:   services.NewIngredientService(db, ent),
		Utensils:      services.NewUtensilService(db, ent),
		ShoppingLists: services.NewShoppingListService(db),
		Billing: services.NewBillingService(db, gateway, services.BillingConfig{
			PriceID:       cfg.StripePriceID,
			WebhookSecret: cfg.StripeWebhookSecret,
			AppURL:        cfg.AppURL,
		}, bus),
		Blog:     services.NewBlogService(db, images, moderator, bus),
		Contact:  services.NewContactService(db, services.NewRateLimiter(db, cfg.ContactRateLimit, cfg.ContactRateWindow), mailer, cfg.ContactRecipient),
		Alerts:   services.NewAlertService(db),
		Admin:    services.NewAdminService(db),
		Push:     push,
		Realtime: hub,
	}, nil
}
