package router

import (
	"github.com/gin-gonic/gin"
	"github.com/printtts/shiplabel-backend/config"
	"github.com/printtts/shiplabel-backend/internal/app/controller"
	"github.com/printtts/shiplabel-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	shipmentController *controller.ShipmentController
	uploadController   *controller.UploadController
	purchaseController *controller.PurchaseController
	presetController   *controller.PresetController
	authMiddleware     *middleware.AuthMiddleware
	sessionMiddleware  *middleware.SessionMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	shipmentController *controller.ShipmentController,
	uploadController *controller.UploadController,
	purchaseController *controller.PurchaseController,
	presetController *controller.PresetController,
	authMiddleware *middleware.AuthMiddleware,
	sessionMiddleware *middleware.SessionMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		shipmentController: shipmentController,
		uploadController:   uploadController,
		purchaseController: purchaseController,
		presetController:   presetController,
		authMiddleware:     authMiddleware,
		sessionMiddleware:  sessionMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Shiplabel API is running",
		})
	})

	api := router.Group("/api")
	{
		api.GET("/template", r.uploadController.Template)

		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authController.Logout)
			auth.GET("/profile", r.authMiddleware.Authenticate(), r.authController.Profile)
		}

		// Shipment data is reachable with a login or with an anonymous
		// session cookie. The session middleware runs on every request so
		// guests get a cookie on first contact.
		owned := api.Group("")
		owned.Use(r.sessionMiddleware.Resolve())
		owned.Use(r.authMiddleware.OptionalAuthenticate())
		{
			owned.POST("/upload", r.uploadController.Upload)

			shipments := owned.Group("/shipments")
			{
				shipments.GET("", r.shipmentController.GetShipments)
				shipments.POST("", r.shipmentController.CreateShipment)
				shipments.DELETE("/delete-all", r.shipmentController.DeleteAllShipments)
				shipments.PATCH("/bulk/update", r.shipmentController.BulkUpdate)
				shipments.POST("/bulk/update", r.shipmentController.BulkUpdate)
				shipments.POST("/bulk/delete", r.shipmentController.BulkDelete)
				shipments.PUT("/:id", r.shipmentController.UpdateShipment)
				shipments.DELETE("/:id", r.shipmentController.DeleteShipment)
			}

			owned.POST("/purchase", r.purchaseController.Purchase)
			owned.GET("/purchases", r.purchaseController.ListPurchases)
		}

		addresses := api.Group("/addresses")
		addresses.Use(r.authMiddleware.Authenticate())
		{
			addresses.GET("", r.presetController.ListAddresses)
			addresses.POST("", r.presetController.CreateAddress)
			addresses.PUT("/:id", r.presetController.UpdateAddress)
			addresses.DELETE("/:id", r.presetController.DeleteAddress)
		}

		packages := api.Group("/packages")
		packages.Use(r.authMiddleware.Authenticate())
		{
			packages.GET("", r.presetController.ListPackages)
			packages.POST("", r.presetController.CreatePackage)
			packages.PUT("/:id", r.presetController.UpdatePackage)
			packages.DELETE("/:id", r.presetController.DeletePackage)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Session-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
