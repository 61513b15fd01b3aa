package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calctree-backend/internal/handlers"
	"github.com/yungbote/calctree-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	TreeHandler    *handlers.TreeHandler
	WSHandler      *handlers.WSHandler
	AuthMiddleware *middleware.AuthMiddleware
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/auth/register", cfg.AuthHandler.Register)
		api.POST("/auth/login", cfg.AuthHandler.Login)

		api.GET("/trees", cfg.TreeHandler.GetAllTrees)

		protected := api.Group("/")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		protected.POST("/trees", cfg.TreeHandler.CreateTree)
		protected.POST("/trees/:treeId/operations", cfg.TreeHandler.AddOperation)
	}

	router.GET("/ws", cfg.WSHandler.Stream)

	router.NoRoute(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusNotFound, "NotFoundError", "Route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
	})

	return router
}
