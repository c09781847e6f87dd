package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/events"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Process Maturity API
// @version         1.0
// @description     Multi-tenant backend for journey/process planning with a two-level maturity approval workflow.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Event bus and WebSocket hub
	bus := events.NewBus()
	wsHub := websocket.NewHub(bus)
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	journeyRepo := repository.NewJourneyRepository(db)
	processRepo := repository.NewProcessRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	maturityRepo := repository.NewMaturityRequestRepository(db)
	evalRepo := repository.NewEvaluationRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	indicatorRepo := repository.NewIndicatorRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Expired refresh tokens are dead weight; sweep them twice a day.
	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := tokenRepo.DeleteExpired(context.Background()); err != nil {
				log.Println("Refresh token cleanup failed:", err)
			}
		}
	}()

	userService := service.NewUserService(userRepo, tokenRepo)
	companyService := service.NewCompanyService(companyRepo)
	journeyService := service.NewJourneyService(journeyRepo, processRepo)
	taskService := service.NewTaskService(taskRepo, processRepo, auditRepo, txManager, bus)
	progressService := service.NewProgressService(taskRepo)
	maturityService := service.NewMaturityService(
		maturityRepo, processRepo, evalRepo, snapshotRepo, auditRepo,
		txManager, progressService, bus,
	)
	indicatorService := service.NewIndicatorService(indicatorRepo, auditRepo, bus)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	companyHandler := handler.NewCompanyHandler(companyService)
	journeyHandler := handler.NewJourneyHandler(journeyService)
	taskHandler := handler.NewTaskHandler(taskService)
	maturityHandler := handler.NewMaturityHandler(maturityService)
	indicatorHandler := handler.NewIndicatorHandler(indicatorService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	companyHandler.RegisterRoutes(api)
	journeyHandler.RegisterRoutes(api)
	taskHandler.RegisterRoutes(api)
	maturityHandler.RegisterRoutes(api)
	indicatorHandler.RegisterRoutes(api)
	auditHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
