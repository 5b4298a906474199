package repositories

import (
	"testing"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository(t *testing.T) {
	repo := setupTestStore(t).Groups()

	group := &models.Group{Title: "Тестовая группа", Slug: "test-slug", Description: "Тестовое описание"}
	require.NoError(t, repo.Create(group))
	assert.Equal(t, 1, group.ID)

	t.Run("get by id and slug", func(t *testing.T) {
		byID, err := repo.GetByID(group.ID)
		require.NoError(t, err)
		assert.Equal(t, group, byID)

		bySlug, err := repo.GetBySlug("test-slug")
		require.NoError(t, err)
		assert.Equal(t, group, bySlug)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := repo.GetBySlug("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		err := repo.Create(&models.Group{Title: "Other", Slug: "test-slug"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("list ordered by title", func(t *testing.T) {
		require.NoError(t, repo.Create(&models.Group{Title: "Alpha", Slug: "alpha"}))
		groups, err := repo.List()
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "Alpha", groups[0].Title)
		assert.Equal(t, "Тестовая группа", groups[1].Title)
	})
}
