package repositories

import (
	"fmt"

	"favshop/internal/apperrors"
	"favshop/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFavoriteRepository is a GORM implementation of FavoriteRepository.
type GORMFavoriteRepository struct {
	db *gorm.DB
}

// NewGORMFavoriteRepository creates a new instance of GORMFavoriteRepository.
func NewGORMFavoriteRepository(db *gorm.DB) *GORMFavoriteRepository {
	return &GORMFavoriteRepository{
		db: db,
	}
}

// GetAllByUser retrieves a user's favorites with their products preloaded.
func (r *GORMFavoriteRepository) GetAllByUser(userID string) ([]models.Favorite, error) {
	favorites := make([]models.Favorite, 0)
	if err := r.db.Preload("Product").Find(&favorites, "user_id = ?", userID).Error; err != nil {
		return nil, apperrors.Store(fmt.Errorf("failed to get favorites for user %s: %w", userID, err))
	}
	return favorites, nil
}

// Create creates a new favorite in the database.
func (r *GORMFavoriteRepository) Create(favorite *models.Favorite) error {
	if favorite.ID == "" {
		favorite.ID = uuid.New().String()
	}
	if err := r.db.Create(favorite).Error; err != nil {
		return apperrors.Store(fmt.Errorf("failed to create favorite: %w", err))
	}
	return nil
}

// Delete deletes a favorite scoped by both the user and favorite ids.
func (r *GORMFavoriteRepository) Delete(userID, favoriteID string) error {
	res := r.db.Delete(&models.Favorite{}, "user_id = ? AND id = ?", userID, favoriteID)
	if res.Error != nil {
		return apperrors.Store(fmt.Errorf("failed to delete favorite %s: %w", favoriteID, res.Error))
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound(fmt.Sprintf("favorite with ID %s not found", favoriteID))
	}
	return nil
}
