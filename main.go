package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"favshop/internal/apperrors"
	"favshop/internal/handlers"
	"favshop/internal/models"
	"favshop/internal/repositories"
	"favshop/internal/services"
	"favshop/pkg/rabbitmq"
)

// Config holds everything the process needs, loaded once at startup and
// passed into constructors rather than read from globals.
type Config struct {
	AppPort     string
	DatabaseDSN string
	JWTSecret   string
	RabbitMQURL string
	ClientDir   string
}

func loadConfig() Config {
	viper.SetDefault("APP_PORT", ":3000")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("JWT_SECRET", "shhh")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("CLIENT_DIR", "./client/dist")
	viper.AutomaticEnv() // Load environment variables

	return Config{
		AppPort:     viper.GetString("APP_PORT"),
		DatabaseDSN: viper.GetString("DATABASE_DSN"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		ClientDir:   viper.GetString("CLIENT_DIR"),
	}
}

func main() {
	cfg := loadConfig()

	// --- Repositories ---
	// With a DSN configured, state lives in PostgreSQL; without one, the
	// in-memory repositories keep local development broker- and DB-free.
	var (
		userRepo     repositories.UserRepository
		productRepo  repositories.ProductRepository
		favoriteRepo repositories.FavoriteRepository
	)
	if cfg.DatabaseDSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		log.Println("Connected to database")

		if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Favorite{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("Tables created")

		userRepo = repositories.NewGORMUserRepository(db)
		productRepo = repositories.NewGORMProductRepository(db)
		favoriteRepo = repositories.NewGORMFavoriteRepository(db)
	} else {
		log.Println("No DATABASE_DSN configured, using in-memory repositories")
		userRepo = repositories.NewMockUserRepository()
		productRepo = repositories.NewMockProductRepository()
		favoriteRepo = repositories.NewMockFavoriteRepository()
	}

	// --- RabbitMQ client (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, favorite events disabled: %v", err)
		} else {
			defer mqClient.Close()
		}
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	productService := services.NewProductService(productRepo)
	favoriteService := services.NewFavoriteService(favoriteRepo, productRepo, mqClient)

	// --- Seed data ---
	seed(authService, productService, userRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService, authService)

	// --- Fiber app ---
	app := fiber.New(fiber.Config{
		ErrorHandler: apperrors.ErrorHandler,
	})
	app.Use(logger.New()) // Request logger

	// --- API routes ---
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	favoriteHandler.RegisterRoutes(api)

	// --- Static client ---
	app.Static("/assets", filepath.Join(cfg.ClientDir, "assets"))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendFile(filepath.Join(cfg.ClientDir, "index.html"))
	})

	// --- Health check ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Favorite event consumer ---
	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for favorite events...")
		if err := mqClient.ConsumeFavoriteEvents(func(msg amqp.Delivery) error {
			log.Printf("Received favorite event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil
		}); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	// --- Start HTTP server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// seed idempotently creates the bootstrap users and products and logs the
// resulting rows.
func seed(authService *services.AuthService, productService *services.ProductService, userRepo repositories.UserRepository) {
	seedUsers := []struct {
		username string
		password string
	}{
		{"moe", "m_pw"},
		{"lucy", "l_pw"},
		{"ethyl", "e_pw"},
		{"curly", "c_pw"},
	}
	for _, u := range seedUsers {
		if _, err := authService.Register(u.username, u.password); err != nil {
			if !apperrors.Is(err, apperrors.KindValidation) {
				log.Printf("Error seeding user %s: %v", u.username, err)
			}
			continue
		}
		log.Printf("Seeded user: %s", u.username)
	}

	existing, err := productService.GetAllProducts()
	if err != nil {
		log.Printf("Error checking seed products: %v", err)
		return
	}
	if len(existing) == 0 {
		for _, name := range []string{"foo", "bar", "bazz", "quq", "fip"} {
			product := models.Product{Name: name}
			if err := productService.CreateProduct(&product); err != nil {
				log.Printf("Error seeding product %s: %v", name, err)
				continue
			}
			log.Printf("Seeded product: %s (ID: %s)", product.Name, product.ID)
		}
	}

	if users, err := userRepo.GetAll(); err == nil {
		log.Printf("Users: %d", len(users))
	}
	if products, err := productService.GetAllProducts(); err == nil {
		log.Printf("Products: %d", len(products))
	}
}
