package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"unicode/utf8"

	"task-manager/internal/auth"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/storage"
)

// UserPatch lists the profile fields to change. Null clears the optional text fields.
type UserPatch struct {
	Username model.Optional[string]
	Email    model.Optional[string]
	FullName model.Optional[string]
	Phone    model.Optional[string]
	Bio      model.Optional[string]
	Password model.Optional[string]
	IsActive model.Optional[bool]
}

// UserService manages the authenticated user's own profile.
type UserService struct {
	users  *repository.UserRepository
	hasher *auth.PasswordHasher
	images *storage.ImageStore
}

func NewUserService(users *repository.UserRepository, hasher *auth.PasswordHasher, images *storage.ImageStore) *UserService {
	return &UserService{users: users, hasher: hasher, images: images}
}

// Update applies patch to user. Username and email uniqueness is only checked when they change,
// username first.
func (s *UserService) Update(ctx context.Context, user *model.User, patch UserPatch) (*model.User, error) {
	updates := make(map[string]interface{})

	if patch.Username.Set {
		username := strings.TrimSpace(patch.Username.Value)
		if n := utf8.RuneCountInString(username); patch.Username.Null || n < 3 || n > 50 {
			return nil, invalid("username must be between 3 and 50 characters")
		}
		if username != user.Username {
			taken, err := s.users.UsernameTaken(ctx, username, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, conflict("username already in use")
			}
			updates["username"] = username
		}
	}
	if patch.Email.Set {
		email := strings.TrimSpace(patch.Email.Value)
		if patch.Email.Null || !validEmail(email) {
			return nil, invalid("email is not valid")
		}
		if email != user.Email {
			taken, err := s.users.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, conflict("email already in use")
			}
			updates["email"] = email
		}
	}
	if patch.FullName.Set {
		if utf8.RuneCountInString(patch.FullName.Value) > 100 {
			return nil, invalid("full name must be at most 100 characters")
		}
		updates["full_name"] = patch.FullName.Ptr()
	}
	if patch.Phone.Set {
		if utf8.RuneCountInString(patch.Phone.Value) > 20 {
			return nil, invalid("phone must be at most 20 characters")
		}
		updates["phone"] = patch.Phone.Ptr()
	}
	if patch.Bio.Set {
		updates["bio"] = patch.Bio.Ptr()
	}
	if patch.Password.Set {
		if patch.Password.Null || len(patch.Password.Value) < 6 || len(patch.Password.Value) > 72 {
			return nil, invalid("password must be between 6 and 72 characters")
		}
		digest, err := s.hasher.Hash(patch.Password.Value)
		if err != nil {
			return nil, invalid("password cannot be hashed: %v", err)
		}
		updates["hashed_password"] = digest
	}
	if patch.IsActive.Set {
		if patch.IsActive.Null {
			return nil, invalid("is_active must be true or false")
		}
		updates["is_active"] = patch.IsActive.Value
	}

	if err := s.users.Updates(ctx, user, updates); err != nil {
		return nil, duplicate(err, "username or email already in use")
	}
	return user, nil
}

// Delete removes the account with all of its tasks and categories, then its picture file.
func (s *UserService) Delete(ctx context.Context, user *model.User) error {
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return lookup(err, "user")
	}
	if user.ProfilePicture != nil {
		if err := s.images.Remove(*user.ProfilePicture); err != nil {
			log.Printf("[warn] remove picture of deleted user %d: %v", user.ID, err)
		}
	}
	log.Printf("[info] user deleted id=%d", user.ID)
	return nil
}

// SetProfilePicture stores a new picture and drops the previous one.
func (s *UserService) SetProfilePicture(ctx context.Context, user *model.User, filename string, r io.Reader) (*model.User, error) {
	name, err := s.images.Save(user.ID, filename, r)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return nil, invalid("file must be a jpeg, png or webp image")
	case errors.Is(err, storage.ErrTooLarge):
		return nil, invalid("image must not exceed %d MB", s.images.MaxBytes()/(1<<20))
	case err != nil:
		return nil, internal("could not store image", err)
	}

	var previous string
	if user.ProfilePicture != nil {
		previous = *user.ProfilePicture
	}
	if err := s.users.Updates(ctx, user, map[string]interface{}{"profile_picture": name}); err != nil {
		if rmErr := s.images.Remove(name); rmErr != nil {
			log.Printf("[warn] remove orphaned picture %s: %v", name, rmErr)
		}
		return nil, err
	}
	if previous != "" && previous != name {
		if err := s.images.Remove(previous); err != nil {
			log.Printf("[warn] remove previous picture %s: %v", previous, err)
		}
	}
	return user, nil
}

// ProfilePicturePath returns where user's picture is stored. When filename is given it must be
// the user's current picture.
func (s *UserService) ProfilePicturePath(user *model.User, filename string) (string, error) {
	if user.ProfilePicture == nil || *user.ProfilePicture == "" {
		return "", notFound("profile picture")
	}
	if filename != "" && filename != *user.ProfilePicture {
		return "", notFound("profile picture")
	}
	path, err := s.images.Path(*user.ProfilePicture)
	if err != nil {
		return "", notFound("profile picture")
	}
	return path, nil
}

// RemoveProfilePicture deletes the picture file and clears the reference.
func (s *UserService) RemoveProfilePicture(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ProfilePicture == nil || *user.ProfilePicture == "" {
		return nil, notFound("profile picture")
	}
	name := *user.ProfilePicture
	if err := s.users.Updates(ctx, user, map[string]interface{}{"profile_picture": nil}); err != nil {
		return nil, err
	}
	if err := s.images.Remove(name); err != nil {
		return nil, internal("could not remove image", fmt.Errorf("remove %s: %w", name, err))
	}
	return user, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, "@")
}
