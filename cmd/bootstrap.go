package cmd

import (
	"fmt"

	"content-catalog/internal/data/repository"
	"content-catalog/pkg/database"
	"content-catalog/pkg/utils"

	"go.uber.org/zap"
)

// env is what every command needs: config, logger and, when requested,
// a database pool with repositories on top.
type env struct {
	config *utils.Config
	log    *zap.Logger
	db     database.PgxIface
	repo   *repository.Repository
}

func loadEnv(withDB bool) (*env, error) {
	config, err := utils.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{config: config, log: logger}
	if !withDB {
		return e, nil
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	logger.Info("Database connected successfully")

	e.db = db
	e.repo = repository.NewRepository(db, logger)
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
	_ = e.log.Sync()
}
