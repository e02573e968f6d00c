package main

import (
	"database/sql"
	"fmt"

	"task-manager/internal/auth"
	"task-manager/internal/config"
	"task-manager/internal/repository"
	"task-manager/internal/server"
	"task-manager/internal/service"
	"task-manager/internal/storage"
)

// app holds the wired components shared by the commands.
type app struct {
	sqlDB   *sql.DB
	server  *server.Server
	janitor *service.UploadJanitor
}

func newApp(cfg config.Config) (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	reader, err := repository.NewReader(db)
	if err != nil {
		return nil, err
	}

	images, err := storage.NewImageStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("upload dir: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	statsRepo := repository.NewStatsRepository(reader)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	a := &app{
		sqlDB:   sqlDB,
		janitor: service.NewUploadJanitor(userRepo, images, service.DefaultUploadGrace),
	}

	// Commands other than serve run without a secret and never touch the HTTP layer.
	if cfg.SecretKey == "" {
		return a, nil
	}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.Algorithm,
		TTL:       cfg.AccessTokenTTL,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("tokens: %w", err)
	}

	a.server = server.New(server.Services{
		Auth:       service.NewAuthService(userRepo, hasher, tokens),
		Users:      service.NewUserService(userRepo, hasher, images),
		Categories: service.NewCategoryService(categoryRepo),
		Tasks:      service.NewTaskService(taskRepo, categoryRepo, statsRepo),
		Imports:    service.NewImportService(taskRepo, categoryRepo),
		DB:         sqlDB,
	}, cfg.CORSOrigins)
	return a, nil
}

func (a *app) close() {
	if a.sqlDB != nil {
		a.sqlDB.Close()
	}
}
