package router

import (
	"log"
	"time"

	"lipa/config"
	"lipa/internal/checkout"
	"lipa/internal/domain"
	"lipa/internal/handler"
	"lipa/internal/middleware"
	"lipa/internal/repository"
	"lipa/internal/service"
	"lipa/internal/ws"
	"lipa/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Gateway: real client when merchant credentials are configured, the
	// in-process simulator otherwise.
	var provider gateway.Provider
	if cfg.Gateway.MerchantID != "" && cfg.Gateway.MerchantSecret != "" {
		provider = gateway.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.MerchantID, cfg.Gateway.MerchantSecret)
	} else {
		log.Printf("[GATEWAY] no merchant credentials configured, using simulator")
		provider = gateway.NewSimulator()
	}

	store := checkout.NewStore(cfg.Checkout.SessionTTL)
	hub := ws.NewCheckoutHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	checkoutHandler := handler.NewCheckoutHandler(cfg, store, provider, orderRepo, paymentRepo, hub)
	orderHandler := handler.NewOrderHandler(orderRepo)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		authed := api.Group("")
		authed.Use(middleware.AuthRequired(&cfg.JWT))
		{
			authed.POST("/checkout", checkoutHandler.Start)
			authed.GET("/checkout/:id", checkoutHandler.Status)
			authed.POST("/checkout/:id/confirm", checkoutHandler.Confirm)
			authed.DELETE("/checkout/:id", checkoutHandler.Cancel)

			authed.GET("/orders", orderHandler.List)
			authed.GET("/orders/:ref", orderHandler.Get)
			authed.GET("/reconciliation/orders", middleware.RequireRole(domain.RoleRestaurant), orderHandler.Reconcile)
		}

		// WS auth happens inside the upgrade handler (token query param).
		api.GET("/ws/checkout/:id", ws.UpgradeCheckoutWS(&cfg.JWT, hub, store))
	}

	return r
}
