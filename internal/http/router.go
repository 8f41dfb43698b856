package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/http/middleware"
)

// InitRouter registers the middleware chain and every route on server.
func InitRouter(server *gin.Engine, ctr *controller.Controller, productCtr *controller.ProductController) *gin.Engine {
	server.Use(middleware.Recovery())
	server.Use(middleware.CORS())
	server.Use(middleware.Logger())

	server.GET("/ping", ctr.Ping)
	server.GET("/health", ctr.Health)

	// API documentation
	server.GET("/api", ctr.Docs)
	server.GET("/api/openapi.yaml", ctr.OpenAPI)

	// Product endpoints
	products := server.Group("/products")
	{
		products.GET("", productCtr.ListProducts)
		products.GET("/:id", productCtr.GetProduct)
		products.POST("", productCtr.CreateProduct)
		products.PUT("/:id/stock", productCtr.UpdateStock)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}
