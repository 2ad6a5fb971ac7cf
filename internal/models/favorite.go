package models

import "gorm.io/gorm"

// Favorite links a user to a product they marked as a favorite.
// The Product association is populated when listing so clients can render
// the favorite without a second lookup.
type Favorite struct {
	ID         string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string   `json:"user_id" gorm:"type:varchar(36);not null;index" validate:"required"`
	ProductID  string   `json:"product_id" gorm:"type:varchar(36);not null;index" validate:"required"`
	Product    *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;references:ID"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
