package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CategoryInput holds the fields of a new category.
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryPatch lists the fields to change; nil fields are left untouched.
type CategoryPatch struct {
	Name  *string
	Color *string
}

// CategoryService manages a user's categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User, skip, limit int) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID, skip, limit)
}

func (s *CategoryService) Get(ctx context.Context, user *model.User, id uint) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, user.ID, id)
	if err != nil {
		return nil, lookup(err, "category")
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, user *model.User, input CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	color := input.Color
	if color == "" {
		color = model.DefaultCategoryColor
	}
	if !colorPattern.MatchString(color) {
		return nil, invalid("color must look like #RRGGBB")
	}

	if err := s.ensureNameFree(ctx, user.ID, name); err != nil {
		return nil, err
	}

	category := model.Category{UserID: user.ID, Name: name, Color: color}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, duplicate(err, "a category with that name already exists")
	}
	log.Printf("[info] category created id=%d user=%d", category.ID, user.ID)
	return &category, nil
}

// Update applies patch. Name uniqueness is only re-checked when the name actually changes.
func (s *CategoryService) Update(ctx context.Context, user *model.User, id uint, patch CategoryPatch) (*model.Category, error) {
	category, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validateCategoryName(name); err != nil {
			return nil, err
		}
		if name != category.Name {
			if err := s.ensureNameFree(ctx, user.ID, name); err != nil {
				return nil, err
			}
			category.Name = name
		}
	}
	if patch.Color != nil {
		if !colorPattern.MatchString(*patch.Color) {
			return nil, invalid("color must look like #RRGGBB")
		}
		category.Color = *patch.Color
	}

	if err := s.repo.Save(ctx, category); err != nil {
		return nil, duplicate(err, "a category with that name already exists")
	}
	return category, nil
}

// Delete removes the category; its tasks survive with no category.
func (s *CategoryService) Delete(ctx context.Context, user *model.User, id uint) error {
	if err := s.repo.Delete(ctx, user.ID, id); err != nil {
		return lookup(err, "category")
	}
	log.Printf("[info] category deleted id=%d user=%d", id, user.ID)
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, userID uint, name string) error {
	_, err := s.repo.FindByName(ctx, userID, name)
	switch {
	case err == nil:
		return conflict("a category with that name already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

func validateCategoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > 50 {
		return invalid("category name must be between 1 and 50 characters")
	}
	return nil
}
