package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/services"
)

type Services struct {
	Auth services.AuthService
	Tree services.TreeService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	return Services{
		Auth: services.NewAuthService(db, log, reposet.User, cfg.JWTSecretKey, cfg.TokenTTL),
		Tree: services.NewTreeService(db, log, reposet.Tree, reposet.Node, reposet.User),
	}
}
