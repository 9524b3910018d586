package main

import (
	"net/http"

	"bookcatalog-backend/internal/shared/middleware"
	"bookcatalog-backend/internal/shared/response"
	"bookcatalog-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		setupBookRoutes(v1, c)
	}

	return router
}

func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:id", c.BookHandler.GetBook)

		// Writes go through the auth guard when a secret is configured.
		writes := books.Group("")
		if secret := c.Config.JWT.Secret; secret != "" {
			writes.Use(middleware.RequireAuth(secret))
		}
		writes.POST("", c.BookHandler.CreateBook)
		writes.PUT("/:id", c.BookHandler.UpdateBook)
		writes.DELETE("/:id", c.BookHandler.DeleteBook)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{
			"database": "ok",
			"cache":    "ok",
		}
		healthy := true

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		}

		if !healthy {
			response.Error(ctx, http.StatusServiceUnavailable, "Service unhealthy", checks)
			return
		}

		response.Success(ctx, http.StatusOK, "Service healthy", checks)
	}
}
