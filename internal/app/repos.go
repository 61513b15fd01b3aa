package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/calctree-backend/internal/logger"
	"github.com/yungbote/calctree-backend/internal/repos"
)

type Repos struct {
	User repos.UserRepo
	Tree repos.TreeRepo
	Node repos.NodeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User: repos.NewUserRepo(db, log),
		Tree: repos.NewTreeRepo(db, log),
		Node: repos.NewNodeRepo(db, log),
	}
}
