package repositories

import (
	"fmt"
	"sync"

	"favshop/internal/apperrors"
	"favshop/internal/models"

	"github.com/google/uuid"
)

// MockFavoriteRepository is an in-memory implementation of
// FavoriteRepository, used when no database is configured. Product
// annotation is left to the caller since this repository does not hold
// product rows.
type MockFavoriteRepository struct {
	favorites map[string]models.Favorite
	order     []string
	mu        sync.RWMutex
}

// NewMockFavoriteRepository creates a new instance of MockFavoriteRepository.
func NewMockFavoriteRepository() *MockFavoriteRepository {
	return &MockFavoriteRepository{
		favorites: make(map[string]models.Favorite),
	}
}

// GetAllByUser returns the user's favorites in insertion order.
func (r *MockFavoriteRepository) GetAllByUser(userID string) ([]models.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	favoriteList := make([]models.Favorite, 0)
	for _, id := range r.order {
		if f, ok := r.favorites[id]; ok && f.UserID == userID {
			favoriteList = append(favoriteList, f)
		}
	}
	return favoriteList, nil
}

// Create adds a new favorite.
func (r *MockFavoriteRepository) Create(favorite *models.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	r.favorites[favorite.ID] = *favorite
	r.order = append(r.order, favorite.ID)
	return nil
}

// Delete removes a favorite scoped by both the user and favorite ids.
func (r *MockFavoriteRepository) Delete(userID, favoriteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	favorite, ok := r.favorites[favoriteID]
	if !ok || favorite.UserID != userID {
		return apperrors.NotFound(fmt.Sprintf("favorite with ID %s not found", favoriteID))
	}
	delete(r.favorites, favoriteID)
	for i, id := range r.order {
		if id == favoriteID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
