package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// Config holds the handlers and middleware the router wires together
type Config struct {
	Auth             middleware.AuthConfig
	AuthHandler      *handler.AuthHandler
	ActorHandler     *handler.ActorHandler
	UnitHandler      *handler.UnitHandler
	LeaseHandler     *handler.LeaseHandler
	PaymentHandler   *handler.PaymentHandler
	CallbackHandler  *handler.PaymentCallbackHandler
	PortfolioHandler *handler.PortfolioHandler
}

// Setup registers all routes on the engine. Login and processor webhooks are
// public; webhook authentication is the processor's signature over the body.
// Everything else requires an authenticated actor, loaded fresh per request.
func Setup(engine *gin.Engine, cfg Config) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")

	// public routes
	api.POST("/auth/login", cfg.AuthHandler.Login)
	api.POST("/webhooks/:processor", cfg.CallbackHandler.HandleConfirmation)

	// protected routes
	protected := api.Group("")
	protected.Use(middleware.ActorAuth(cfg.Auth))

	auth := protected.Group("/auth")
	{
		auth.GET("/me", cfg.AuthHandler.GetCurrentActor)
		auth.POST("/change-password", cfg.AuthHandler.ChangePassword)
	}

	actors := protected.Group("/actors")
	{
		actors.POST("", cfg.ActorHandler.Create)
		actors.GET("", cfg.ActorHandler.ListByRole)
		actors.POST("/:id/units", cfg.ActorHandler.AssignUnit)
		actors.DELETE("/:id/units/:unitID", cfg.ActorHandler.UnassignUnit)
		actors.PUT("/:id/role", cfg.ActorHandler.ChangeRole)
		actors.DELETE("/:id", cfg.ActorHandler.Deactivate)
	}

	units := protected.Group("/units")
	{
		units.POST("", cfg.UnitHandler.Create)
		units.GET("", cfg.UnitHandler.List)
		units.GET("/:id", cfg.UnitHandler.Get)
		units.PUT("/:id", cfg.UnitHandler.Update)
		units.DELETE("/:id", cfg.UnitHandler.Delete)
	}

	leases := protected.Group("/leases")
	{
		leases.POST("", cfg.LeaseHandler.Create)
		leases.GET("", cfg.LeaseHandler.List)
		leases.GET("/:id", cfg.LeaseHandler.Get)
		leases.POST("/:id/terminate", cfg.LeaseHandler.Terminate)
		leases.POST("/:id/activate", cfg.LeaseHandler.Activate)
		leases.POST("/:id/renew", cfg.LeaseHandler.Renew)
		leases.GET("/:id/obligation", cfg.PaymentHandler.LeaseObligation)
	}

	payments := protected.Group("/payments")
	{
		payments.POST("", cfg.PaymentHandler.Record)
		payments.GET("", cfg.PaymentHandler.List)
	}

	tenants := protected.Group("/tenants")
	{
		tenants.GET("/:id/payments", cfg.PaymentHandler.History)
		tenants.GET("/:id/obligation", cfg.PaymentHandler.Obligation)
	}

	protected.GET("/portfolio/overview", cfg.PortfolioHandler.Overview)
}
