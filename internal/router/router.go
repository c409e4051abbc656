package router

import (
	"net/http"

	"nuoitoi/config"
	"nuoitoi/internal/cache"
	"nuoitoi/internal/events"
	"nuoitoi/internal/handler"
	"nuoitoi/internal/metrics"
	"nuoitoi/internal/middleware"
	"nuoitoi/internal/repository"
	"nuoitoi/internal/service"
	"nuoitoi/internal/stream"
	"nuoitoi/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the process-wide pieces chosen at startup from configuration.
type Deps struct {
	Pending cache.PendingStore
	Bus     events.Bus
	Gateway payment.Gateway
	Metrics *metrics.Metrics
	Limiter *middleware.IPRateLimiter
	Log     *zap.Logger
}

func Setup(cfg *config.Config, db *gorm.DB, d Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	// Repositories
	donationRepo := repository.NewDonationRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// Services
	donationSvc := service.NewDonationService(cfg, donationRepo, expenseRepo, d.Pending, d.Bus, d.Gateway, d.Metrics, d.Log)
	notifier := stream.NewNotifier(d.Bus, donationSvc, d.Metrics, d.Log, stream.Options{
		PingInterval: cfg.Stream.PingInterval,
		BufferSize:   cfg.Stream.BufferSize,
	})

	// Handlers
	paymentHandler := handler.NewPaymentHandler(donationSvc)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(donationSvc)
	donationHandler := handler.NewDonationHandler(donationSvc)
	expenseHandler := handler.NewExpenseHandler(donationSvc)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "payos": d.Gateway.Configured()})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// provider webhook: outside the limiter
	r.POST("/api/payos/webhook", paymentWebhookHandler.Handle)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.Limiter))
	{
		payos := api.Group("/payos")
		{
			payos.POST("/create-payment", paymentHandler.Create)
			payos.GET("/status/:orderCode", paymentHandler.Status)
		}
		api.GET("/donations", donationHandler.List)
		api.POST("/donations", donationHandler.Record)
		api.GET("/donations/stats", donationHandler.Stats)
		api.GET("/donations/stream", notifier.ServeSSE)
		api.GET("/expenses", expenseHandler.Get)
	}

	r.GET("/ws/donations", notifier.ServeWS)

	return r
}
