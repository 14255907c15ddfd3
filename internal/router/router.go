package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iwapim/catalog-backend/config"
	"github.com/iwapim/catalog-backend/internal/app/controller"
	"github.com/iwapim/catalog-backend/internal/middleware"
)

type Router struct {
	productController  *controller.ProductController
	variantController  *controller.VariantController
	currencyController *controller.CurrencyController
	stickerController  *controller.StickerController
	listingController  *controller.ListingController
	config             *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	variantController *controller.VariantController,
	currencyController *controller.CurrencyController,
	stickerController *controller.StickerController,
	listingController *controller.ListingController,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:  productController,
		variantController:  variantController,
		currencyController: currencyController,
		stickerController:  stickerController,
		listingController:  listingController,
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
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.POST("", r.productController.CreateProduct)
			products.GET("/resolve", r.productController.ResolveProduct)
			products.GET("/:id", r.productController.GetProductByID)
			products.PUT("/:id", r.productController.UpdateProduct)
			products.DELETE("/:id", r.productController.DeleteProduct)
			products.POST("/:id/set-items", r.productController.AddToSet)

			products.GET("/:id/axes", r.variantController.GetAxisOptions)
			products.POST("/:id/axes/check-removal", r.variantController.CheckAxisRemoval)
			products.POST("/:id/axes/sizes", r.variantController.AddSizeRow)
			products.DELETE("/:id/axes/sizes/:rowId", r.variantController.RemoveSizeRow)
			products.POST("/:id/axes/customs", r.variantController.AddCustomRow)
			products.DELETE("/:id/axes/customs/:rowId", r.variantController.RemoveCustomRow)
			products.POST("/:id/variants/matrix", r.variantController.GenerateMatrix)
			products.POST("/:id/variants/reconcile", r.variantController.Reconcile)
			products.DELETE("/:id/variants", r.variantController.DeleteVariant)

			products.POST("/:id/stickers", r.stickerController.EnsureStickers)
			products.GET("/:id/stickers/export", r.stickerController.ExportStickers)

			products.POST("/:id/listings/sync", r.listingController.SyncListings)
			products.GET("/:id/listings", r.listingController.GetListings)
		}

		currencies := v1.Group("/currencies")
		{
			currencies.GET("", r.currencyController.GetLatestRates)
			currencies.POST("/refresh", r.currencyController.RefreshRates)
			currencies.GET("/:code", r.currencyController.GetRateByCode)
			currencies.GET("/:code/history", r.currencyController.GetHistory)
		}

		marketplaces := v1.Group("/marketplaces")
		{
			marketplaces.GET("", r.listingController.ListMarketplaces)
			marketplaces.POST("", r.listingController.RegisterMarketplace)
			marketplaces.GET("/:id/listings", r.listingController.GetMarketplaceListings)
		}

		stickers := v1.Group("/stickers")
		{
			stickers.GET("/batches/:batchId/export", r.stickerController.ExportBatchStickers)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowed[origin] || allowed["*"] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Max-Age", (12 * time.Hour).String())
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
