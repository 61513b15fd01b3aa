package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/calctree-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlerset.Auth,
		TreeHandler:    handlerset.Tree,
		WSHandler:      handlerset.WS,
		AuthMiddleware: middlewareset.Auth,
		AllowedOrigins: []string{cfg.FrontendOrigin},
	})
}
