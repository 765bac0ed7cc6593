package main

import (
	"log"

	"mybench_backend/internal/application"
	"mybench_backend/internal/candidate"
	"mybench_backend/internal/company"
	"mybench_backend/internal/config"
	"mybench_backend/internal/credit"
	"mybench_backend/internal/job"
	"mybench_backend/internal/notification"
	"mybench_backend/internal/platform/database"
	"mybench_backend/internal/platform/logger"
	"mybench_backend/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// models lists every table the server owns, in dependency order.
func models() []interface{} {
	return []interface{}{
		&company.Company{},
		&user.User{},
		&candidate.Candidate{},
		&credit.CreditAccount{},
		&credit.CreditTransaction{},
		&credit.ContactUnlock{},
		&job.Job{},
		&application.Application{},
		&notification.Notification{},
	}
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}, nil
}

func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBAutoMigrate {
		if err := database.AutoMigrate(db, logger, models()...); err != nil {
			database.CloseGORMDB(db, logger)
			return nil, nil, err
		}
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}
