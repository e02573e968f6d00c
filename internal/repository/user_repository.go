package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether another user than excludeID already holds username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.exists(ctx, "username = ?", username, excludeID)
}

// EmailTaken reports whether another user than excludeID already holds email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *UserRepository) exists(ctx context.Context, cond string, value string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where(cond, value)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// Updates writes the given columns for user and reloads it.
func (r *UserRepository) Updates(ctx context.Context, user *model.User, updates map[string]interface{}) error {
	db := r.db.WithContext(ctx)
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}
	}
	var fresh model.User
	if err := db.First(&fresh, user.ID).Error; err != nil {
		return fmt.Errorf("reload user: %w", err)
	}
	*user = fresh
	return nil
}

// Delete removes the user together with every task and category they own.
func (r *UserRepository) Delete(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(OwnedBy(userID)).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := tx.Scopes(OwnedBy(userID)).Delete(&model.Category{}).Error; err != nil {
			return fmt.Errorf("delete categories: %w", err)
		}
		res := tx.Delete(&model.User{}, userID)
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ProfilePictures returns every stored picture path.
func (r *UserRepository) ProfilePictures(ctx context.Context) ([]string, error) {
	var paths []string
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("profile_picture IS NOT NULL AND profile_picture <> ''").
		Pluck("profile_picture", &paths).Error; err != nil {
		return nil, fmt.Errorf("list profile pictures: %w", err)
	}
	return paths, nil
}
