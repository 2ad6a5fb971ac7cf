package repositories

import "favshop/internal/models"

// ProductRepository defines the interface for product data access.
// Products are only written by the seed path, so there is no update/delete.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
}
