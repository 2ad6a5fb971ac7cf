package handlers

import (
	"favshop/internal/apperrors"
	"favshop/internal/middleware"
	"favshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler handles HTTP requests for a user's favorites.
type FavoriteHandler struct {
	service     *services.FavoriteService
	authService *services.AuthService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service *services.FavoriteService, authService *services.AuthService) *FavoriteHandler {
	return &FavoriteHandler{
		service:     service,
		authService: authService,
	}
}

// RegisterRoutes registers the favorite routes with the Fiber app. Every
// route requires a token whose user matches the id in the path.
func (h *FavoriteHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users", middleware.AuthRequired(h.authService))
	userRoutes.Get("/:id/favorites", middleware.OwnerRequired("id"), h.HandleGetFavorites)
	userRoutes.Post("/:id/favorites", middleware.OwnerRequired("id"), h.HandleCreateFavorite)
	userRoutes.Delete("/:user_id/favorites/:id", middleware.OwnerRequired("user_id"), h.HandleDeleteFavorite)
}

// HandleGetFavorites lists the user's favorites with product details.
func (h *FavoriteHandler) HandleGetFavorites(c *fiber.Ctx) error {
	favorites, err := h.service.GetUserFavorites(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(favorites)
}

// CreateFavoriteRequest is the request body for creating a favorite.
type CreateFavoriteRequest struct {
	ProductID string `json:"product_id"`
}

// HandleCreateFavorite creates a favorite for the user in the path.
func (h *FavoriteHandler) HandleCreateFavorite(c *fiber.Ctx) error {
	var req CreateFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}

	favorite, err := h.service.CreateFavorite(c.Params("id"), req.ProductID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(favorite)
}

// HandleDeleteFavorite deletes the favorite scoped by both path ids.
func (h *FavoriteHandler) HandleDeleteFavorite(c *fiber.Ctx) error {
	if err := h.service.DeleteFavorite(c.Params("user_id"), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
