package router

import (
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/handlers"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/middleware"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/models"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/repositories"
	"github.com/Qwitter/Qwitter-Backend-sub000/internal/services"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, redisClient *redis.Client) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Mute{},
		&models.Block{},
		&models.Like{},
		&models.Entity{},
		&models.TweetEntity{},
		&models.MessageEntity{},
		&models.NotificationEvent{},
	)
	if err != nil {
		zap.S().Fatalw("failed to auto migrate models", "error", err)
	}
	zap.S().Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	tweetRepo := repositories.NewMongoTweetRepository(mgClient.Database("qwitter"))
	entityRepo := repositories.NewPostgresEntityRepository(pgdb)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	unreadStore := repositories.NewRedisUnreadCounterStore(redisClient)

	// --- Core services ---
	entityService := services.NewEntityService(entityRepo, userRepo)
	resolver := services.NewResolver(tweetRepo, userRepo, relationshipRepo, entityRepo, services.ResolverOptions{RedactDeleted: true})
	notificationService := services.NewNotificationService(notificationRepo, tweetRepo, userRepo, relationshipRepo, unreadStore, resolver)

	// --- Routes (viewer id extracted from JWT when present, anonymous otherwise) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	tweetHandler := handlers.NewTweetHandler(tweetRepo, resolver, entityService, notificationService)
	tweetHandler.RegisterTweetRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	notificationHandler.RegisterNotificationRoutes(api)

	zap.S().Info("all routes configured")
}
