package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"favshop/internal/apperrors"
	"favshop/internal/handlers"
	"favshop/internal/models"
	"favshop/internal/repositories"
	"favshop/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp builds the full Fiber app against a fresh in-memory SQLite
// database seeded with the bootstrap products.
func setupApp(t *testing.T) (*fiber.App, []models.Product) {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Favorite{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	favoriteRepo := repositories.NewGORMFavoriteRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	productService := services.NewProductService(productRepo)
	favoriteService := services.NewFavoriteService(favoriteRepo, productRepo, nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler,
	})
	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewProductHandler(productService).RegisterRoutes(api)
	handlers.NewFavoriteHandler(favoriteService, authService).RegisterRoutes(api)

	products := make([]models.Product, 0, 5)
	for _, name := range []string{"foo", "bar", "bazz", "quq", "fip"} {
		product := models.Product{Name: name}
		if err := productRepo.Create(&product); err != nil {
			t.Fatalf("failed to seed product %s: %v", name, err)
		}
		products = append(products, product)
	}

	return app, products
}

// doRequest performs a request against the app, optionally with a JSON body
// and an Authorization header.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// registerUser registers a user and returns the issued token.
func registerUser(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()

	resp := doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["token"])
	return body["token"]
}

// currentUser fetches /api/auth/me for the token.
func currentUser(t *testing.T, app *fiber.App, token string) map[string]interface{} {
	t.Helper()

	resp := doRequest(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user map[string]interface{}
	decodeBody(t, resp, &user)
	return user
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestRegisterAndMe(t *testing.T) {
	app, _ := setupApp(t)

	token := registerUser(t, app, "moe", "m_pw")

	// The raw token in the Authorization header identifies the user. The
	// response carries the public fields and never the password hash.
	user := currentUser(t, app, token)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "moe", user["username"])
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
	_, hasPassword = user["Password"]
	assert.False(t, hasPassword)

	// The Bearer form works too.
	resp := doRequest(t, app, http.MethodGet, "/api/auth/me", "Bearer "+token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Duplicate registration fails and the error funnels to {"error": ...}.
	resp = doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "moe",
		"password": "other_pw",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	assert.Contains(t, errBody["error"], "already taken")

	// Missing fields are rejected.
	resp = doRequest(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "larry",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLogin(t *testing.T) {
	app, _ := setupApp(t)
	registerUser(t, app, "moe", "m_pw")

	resp := doRequest(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "moe",
		"password": "m_pw",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.NotEmpty(t, body["token"])

	// Wrong password and unknown user both yield 401 with the same message.
	for _, creds := range []map[string]string{
		{"username": "moe", "password": "wrong"},
		{"username": "nobody", "password": "m_pw"},
	} {
		resp = doRequest(t, app, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var errBody map[string]string
		decodeBody(t, resp, &errBody)
		assert.Equal(t, "invalid credentials", errBody["error"])
	}
}

func TestMeRejectsBadTokens(t *testing.T) {
	app, _ := setupApp(t)
	token := registerUser(t, app, "moe", "m_pw")

	for name, bad := range map[string]string{
		"missing":  "",
		"garbage":  "not.a.token",
		"tampered": token + "x",
	} {
		resp := doRequest(t, app, http.MethodGet, "/api/auth/me", bad, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "case %s", name)
		resp.Body.Close()
	}
}

func TestFavoriteLifecycle(t *testing.T) {
	app, products := setupApp(t)
	foo := products[0]

	token := registerUser(t, app, "moe", "m_pw")
	moeID := currentUser(t, app, token)["id"].(string)

	favoritesPath := "/api/users/" + moeID + "/favorites"

	// Initially empty.
	resp := doRequest(t, app, http.MethodGet, favoritesPath, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var favorites []models.Favorite
	decodeBody(t, resp, &favorites)
	assert.Empty(t, favorites)

	// Create a favorite referencing foo.
	resp = doRequest(t, app, http.MethodPost, favoritesPath, token, map[string]string{
		"product_id": foo.ID,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Favorite
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, moeID, created.UserID)
	assert.Equal(t, foo.ID, created.ProductID)

	// Listing returns exactly that favorite, annotated with the product.
	resp = doRequest(t, app, http.MethodGet, favoritesPath, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &favorites)
	assert.Len(t, favorites, 1)
	assert.Equal(t, created.ID, favorites[0].ID)
	if assert.NotNil(t, favorites[0].Product) {
		assert.Equal(t, "foo", favorites[0].Product.Name)
	}

	// Delete it; a second delete is not-found.
	resp = doRequest(t, app, http.MethodDelete, favoritesPath+"/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doRequest(t, app, http.MethodGet, favoritesPath, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &favorites)
	assert.Empty(t, favorites)

	resp = doRequest(t, app, http.MethodDelete, favoritesPath+"/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// A favorite for a nonexistent product is rejected.
	resp = doRequest(t, app, http.MethodPost, favoritesPath, token, map[string]string{
		"product_id": "no-such-product",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestFavoritesCrossUser(t *testing.T) {
	app, products := setupApp(t)

	moeToken := registerUser(t, app, "moe", "m_pw")
	lucyToken := registerUser(t, app, "lucy", "l_pw")
	lucyID := currentUser(t, app, lucyToken)["id"].(string)

	lucyFavorites := "/api/users/" + lucyID + "/favorites"

	// Moe's token never authorizes operations scoped to lucy's id.
	resp := doRequest(t, app, http.MethodPost, lucyFavorites, moeToken, map[string]string{
		"product_id": products[0].ID,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	assert.Equal(t, "Unauthorized access", errBody["error"])

	resp = doRequest(t, app, http.MethodGet, lucyFavorites, moeToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// No row was created by the rejected request.
	resp = doRequest(t, app, http.MethodGet, lucyFavorites, lucyToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var favorites []models.Favorite
	decodeBody(t, resp, &favorites)
	assert.Empty(t, favorites)
}

func TestProductsArePublic(t *testing.T) {
	app, _ := setupApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	decodeBody(t, resp, &products)
	assert.Len(t, products, 5)

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"foo", "bar", "bazz", "quq", "fip"}, names)
}
