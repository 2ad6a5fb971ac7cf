package repositories

import "favshop/internal/models"

// FavoriteRepository defines the interface for favorite data access.
type FavoriteRepository interface {
	// GetAllByUser returns the user's favorites with their products attached.
	GetAllByUser(userID string) ([]models.Favorite, error)
	Create(favorite *models.Favorite) error
	// Delete removes the favorite scoped by both ids. It reports not-found
	// when no row matches, rather than silently succeeding.
	Delete(userID, favoriteID string) error
}
