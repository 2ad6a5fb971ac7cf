package repositories

import (
	"testing"

	"favshop/internal/apperrors"
	"favshop/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMockFavoriteRepository_DeleteCompactsOrder(t *testing.T) {
	repo := NewMockFavoriteRepository()

	// Repeated create/delete cycles must not leave stale ids behind.
	for i := 0; i < 3; i++ {
		favorite := &models.Favorite{UserID: "user-1", ProductID: "prod-1"}
		assert.NoError(t, repo.Create(favorite))
		assert.NoError(t, repo.Delete("user-1", favorite.ID))
	}
	assert.Empty(t, repo.order)

	// A surviving favorite keeps its place.
	kept := &models.Favorite{UserID: "user-1", ProductID: "prod-1"}
	gone := &models.Favorite{UserID: "user-1", ProductID: "prod-2"}
	assert.NoError(t, repo.Create(kept))
	assert.NoError(t, repo.Create(gone))
	assert.NoError(t, repo.Delete("user-1", gone.ID))
	assert.Equal(t, []string{kept.ID}, repo.order)

	favorites, err := repo.GetAllByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, favorites, 1)
	assert.Equal(t, kept.ID, favorites[0].ID)
}

func TestMockFavoriteRepository_DeleteScopedByUser(t *testing.T) {
	repo := NewMockFavoriteRepository()

	favorite := &models.Favorite{UserID: "user-1", ProductID: "prod-1"}
	assert.NoError(t, repo.Create(favorite))

	// Another user's id never deletes the row.
	err := repo.Delete("user-2", favorite.ID)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	favorites, err := repo.GetAllByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, favorites, 1)
}
