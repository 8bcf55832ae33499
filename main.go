package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"storefront/internal/cartstore"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "host=localhost user=store password=store dbname=storefront port=5432 sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "") // empty selects the in-memory cart store
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.SetDefault("JWT_SECRET", "change_me_in_production")
	viper.SetDefault("CURRENCY", "usd")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := gorm.Open(postgres.Open(viper.GetString("DATABASE_DSN")), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.User{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Cart store ---
	// The store client is constructed once here and injected everywhere;
	// handlers never reach for a process-wide singleton.
	var store cartstore.Store
	if addr := viper.GetString("REDIS_ADDR"); addr != "" {
		store = cartstore.NewRedisStore(cartstore.NewRedisClient(addr, viper.GetString("REDIS_PASSWORD")))
		log.Printf("Using redis cart store at %s", addr)
	} else {
		store = cartstore.NewMemoryStore()
		log.Println("REDIS_ADDR not set; using in-memory cart store")
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: url})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
	} else {
		log.Println("RABBITMQ_URL not set; order events disabled")
	}

	// --- Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	variantRepo := repositories.NewGORMVariantRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)

	// --- Services ---
	provider := payments.NewOfflineProvider()
	cartService := services.NewCartService(store, variantRepo)
	checkoutService := services.NewCheckoutService(store, variantRepo, orderRepo, userRepo, provider, mqClient, viper.GetString("CURRENCY"))
	orderService := services.NewOrderService(orderRepo, mqClient)
	inventoryService := services.NewInventoryService(variantRepo)
	productService := services.NewProductService(productRepo, variantRepo)
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"))
	addressService := services.NewAddressService(addressRepo)

	// --- Handlers ---
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)
	productHandler := handlers.NewProductHandler(productService, inventoryService)
	authHandler := handlers.NewAuthHandler(authService)
	addressHandler := handlers.NewAddressHandler(addressService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	// Cart and checkout work for guests; a valid token attaches identity.
	optional := apiV1.Group("", middleware.OptionalAuth(authService))
	cartHandler.RegisterRoutes(optional)
	checkoutHandler.RegisterRoutes(optional)

	// Order history and the address book require authentication.
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterRoutes(protected)
	addressHandler.RegisterRoutes(protected)

	// Admin catalog and inventory surface.
	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start order event consumer in a goroutine ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received order event %s (Tag: %d): %s", msg.RoutingKey, msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			keys := []string{
				rabbitmq.KeyOrderCreated,
				rabbitmq.KeyOrderPaid,
				rabbitmq.KeyOrderCancelled,
				rabbitmq.KeyOrderFulfilled,
			}
			if consumerErr := mqClient.Consume("storefront_orders", keys, messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
