package main

import (
	"os"
	"time"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/document"
	"backend/internal/handler"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// @title           Studio Invoicing API
// @version         1.0
// @description     Invoicing and client management API for a psychology practice.
// @host            localhost:8080
// @BasePath        /
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("no configs/.env file found, relying on environment")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Str("host", dbHost).Str("database", dbName).Msg("connected to PostgreSQL")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// PDF conversion is optional: without a Gotenberg instance the PDF
	// is rendered natively instead.
	var converter document.Converter
	if gotenbergURL := os.Getenv("GOTENBERG_URL"); gotenbergURL != "" {
		converter = document.NewGotenbergClient(gotenbergURL, 30*time.Second)
		log.Info().Str("url", gotenbergURL).Msg("using Gotenberg for PDF conversion")
	} else {
		log.Info().Msg("GOTENBERG_URL not set, rendering PDFs natively")
	}
	templatePath := envOr("TEMPLATE_PATH", "configs/invoice_template.docx")

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	clientRepo := repository.NewClientRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	counterRepo := repository.NewCounterRepository(db)
	costRepo := repository.NewCostRepository(db)
	ruleRepo := repository.NewPricingRuleRepository(db)

	pricingRuleService := service.NewPricingRuleService(ruleRepo)
	clientService := service.NewClientService(clientRepo, txManager)
	invoiceService := service.NewInvoiceService(invoiceRepo, clientRepo, counterRepo, pricingRuleService, txManager, wsHub)
	costService := service.NewCostService(costRepo, txManager, wsHub)
	statisticsService := service.NewStatisticsService(db)
	documentService := service.NewDocumentService(invoiceRepo, pricingRuleService, converter, templatePath)

	// Initialize Handlers
	clientHandler := handler.NewClientHandler(clientService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, documentService)
	costHandler := handler.NewCostHandler(costService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	pricingRuleHandler := handler.NewPricingRuleHandler(pricingRuleService)

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
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(503, gin.H{"status": "DEGRADED"})
			return
		}
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	// Register API Routes
	clientHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	costHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))
	pricingRuleHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")

	log.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
