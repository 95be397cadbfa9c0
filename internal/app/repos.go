package app

import (
	"github.com/yungbote/coursetree/internal/data/db"
	"github.com/yungbote/coursetree/internal/data/repos"
	"github.com/yungbote/coursetree/internal/platform/logger"
)

func wireRepos(dbs *db.Service, log *logger.Logger) repos.Set {
	log.Info("Wiring repos...")
	return repos.NewSet(dbs.DB(), log)
}
