package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/model"
)

func TestCategoryCreateDefaultsAndConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	category, err := env.categories.Create(ctx, alice, CategoryInput{Name: "Work"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategoryColor, category.Color)

	_, err = env.categories.Create(ctx, alice, CategoryInput{Name: "Work"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.categories.Create(ctx, bob, CategoryInput{Name: "Work"})
	assert.NoError(t, err)

	_, err = env.categories.Create(ctx, alice, CategoryInput{Name: "Bad", Color: "blue"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.categories.Create(ctx, alice, CategoryInput{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")

	work, err := env.categories.Create(ctx, user, CategoryInput{Name: "Work", Color: "#112233"})
	require.NoError(t, err)
	_, err = env.categories.Create(ctx, user, CategoryInput{Name: "Home"})
	require.NoError(t, err)

	same := "Work"
	color := "#AABBCC"
	updated, err := env.categories.Update(ctx, user, work.ID, CategoryPatch{Name: &same, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "#AABBCC", updated.Color)

	taken := "Home"
	_, err = env.categories.Update(ctx, user, work.ID, CategoryPatch{Name: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	other := env.register(t, "bob")
	_, err = env.categories.Update(ctx, other, work.ID, CategoryPatch{Color: &color})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryDeleteKeepsTasks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.register(t, "alice")

	category, err := env.categories.Create(ctx, user, CategoryInput{Name: "Errands"})
	require.NoError(t, err)
	task, err := env.tasks.Create(ctx, user, TaskInput{Title: "post office", CategoryID: &category.ID})
	require.NoError(t, err)

	require.NoError(t, env.categories.Delete(ctx, user, category.ID))

	kept, err := env.tasks.Get(ctx, user, task.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CategoryID)

	assert.ErrorIs(t, env.categories.Delete(ctx, user, category.ID), ErrNotFound)
	_, err = env.categories.Get(ctx, user, category.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
