package services

import (
	"encoding/json"
	"fmt"
	"log"

	"favshop/internal/apperrors"
	"favshop/internal/models"
	"favshop/internal/repositories"
	"favshop/pkg/rabbitmq"
)

// FavoriteService handles business logic related to favorites.
type FavoriteService struct {
	favoriteRepo repositories.FavoriteRepository
	productRepo  repositories.ProductRepository
	mqClient     *rabbitmq.Client
}

// NewFavoriteService creates a new FavoriteService. The RabbitMQ client is
// optional; a nil client skips event publication so the HTTP path never
// depends on the broker.
func NewFavoriteService(favoriteRepo repositories.FavoriteRepository, productRepo repositories.ProductRepository, mqClient *rabbitmq.Client) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		mqClient:     mqClient,
	}
}

// GetUserFavorites retrieves a user's favorites with product details. The
// GORM repository preloads products; for repositories that don't, the
// missing annotations are filled in here.
func (s *FavoriteService) GetUserFavorites(userID string) ([]models.Favorite, error) {
	favorites, err := s.favoriteRepo.GetAllByUser(userID)
	if err != nil {
		return nil, err
	}

	for i := range favorites {
		if favorites[i].Product != nil {
			continue
		}
		product, err := s.productRepo.GetByID(favorites[i].ProductID)
		if err != nil {
			if apperrors.Is(err, apperrors.KindNotFound) {
				continue
			}
			return nil, err
		}
		favorites[i].Product = product
	}
	return favorites, nil
}

// CreateFavorite creates a favorite for the user, checking first that the
// referenced product exists.
func (s *FavoriteService) CreateFavorite(userID, productID string) (*models.Favorite, error) {
	if productID == "" {
		return nil, apperrors.Validation("product_id is required")
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return nil, apperrors.Validation(fmt.Sprintf("product with ID %s does not exist", productID))
		}
		return nil, err
	}

	favorite := &models.Favorite{
		UserID:    userID,
		ProductID: productID,
	}
	if err := s.favoriteRepo.Create(favorite); err != nil {
		return nil, err
	}
	favorite.Product = product

	s.publishEvent("favorite.created", favorite.ID, userID, productID)

	return favorite, nil
}

// DeleteFavorite removes a favorite scoped by both the user and favorite
// ids. A mismatch on either id surfaces as not-found.
func (s *FavoriteService) DeleteFavorite(userID, favoriteID string) error {
	if err := s.favoriteRepo.Delete(userID, favoriteID); err != nil {
		return err
	}

	s.publishEvent("favorite.deleted", favoriteID, userID, "")

	return nil
}

// publishEvent sends a favorite event to RabbitMQ. Publication is best
// effort: failures are logged, never propagated to the request.
func (s *FavoriteService) publishEvent(event, favoriteID, userID, productID string) {
	if s.mqClient == nil {
		return
	}

	message := map[string]interface{}{
		"event":       event,
		"favorite_id": favoriteID,
		"user_id":     userID,
	}
	if productID != "" {
		message["product_id"] = productID
	}

	body, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}
	if err := s.mqClient.Publish(body); err != nil {
		log.Printf("Warning: Failed to publish %s event for favorite %s: %v", event, favoriteID, err)
	}
}
