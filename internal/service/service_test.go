package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/storage"
)

type testEnv struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	images     *storage.ImageStore
	auth       *AuthService
	users      *UserService
	categories *CategoryService
	tasks      *TaskService
	imports    *ImportService
	janitor    *UploadJanitor
	tokens     *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	db, err := repository.NewDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	reader, err := repository.NewReader(db)
	require.NoError(t, err)

	images, err := storage.NewImageStore(filepath.Join(dir, "uploads"), 1<<20)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: []byte("test-secret"), Algorithm: "HS256", TTL: time.Minute})
	require.NoError(t, err)

	hasher := auth.NewPasswordHasher(4)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &testEnv{
		db:         db,
		userRepo:   userRepo,
		images:     images,
		auth:       NewAuthService(userRepo, hasher, tokens),
		users:      NewUserService(userRepo, hasher, images),
		categories: NewCategoryService(categoryRepo),
		tasks:      NewTaskService(taskRepo, categoryRepo, repository.NewStatsRepository(reader)),
		imports:    NewImportService(taskRepo, categoryRepo),
		janitor:    NewUploadJanitor(userRepo, images, DefaultUploadGrace),
		tokens:     tokens,
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password-" + username,
	})
	require.NoError(t, err)
	return user
}
