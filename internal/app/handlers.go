package app

import (
	"github.com/yungbote/calctree-backend/internal/handlers"
	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/middleware"
	"github.com/yungbote/calctree-backend/internal/ws"
)

type Handlers struct {
	Auth *handlers.AuthHandler
	Tree *handlers.TreeHandler
	WS   *handlers.WSHandler
}

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *ws.Hub) Handlers {
	return Handlers{
		Auth: handlers.NewAuthHandler(serviceset.Auth),
		Tree: handlers.NewTreeHandler(log, serviceset.Tree, hub),
		WS:   handlers.NewWSHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, serviceset.Auth),
	}
}
