package main

import (
	"context"
	"ecuestre_go/config"
	"ecuestre_go/database"
	"ecuestre_go/middleware"
	"ecuestre_go/routes"
	"ecuestre_go/services"
	"ecuestre_go/services/websocket"
	"ecuestre_go/storage"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	// Load configuration
	config.LoadConfig()

	// Initialize logging
	setupLogging()

	// Connect to database
	database.Connect()
}

func main() {
	// Create WebSocket hub first
	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := setupStorage()

	deps := routes.NewDependencies(routes.Options{
		DB:                database.DB,
		Redis:             database.GetRedisClient(),
		Store:             store,
		Mailer:            services.NewMailer(config.AppConfig.ResendAPIKey, config.AppConfig.MailFrom),
		Line:              services.NewLineMessagingService(config.AppConfig.LineChannelSecret, config.AppConfig.LineChannelToken),
		LineSecret:        config.AppConfig.LineChannelSecret,
		Hub:               wsHub,
		Environment:       config.AppConfig.AppEnv,
		InvoiceDueDay:     config.AppConfig.InvoiceDueDay,
		AllowedExtensions: config.AppConfig.AllowedExtensionList(),
		MaxFileSize:       config.AppConfig.MaxFileSize,
	})

	// Maintenance jobs
	schedules := services.Schedules{
		ExpireSubscriptions: config.AppConfig.ExpireSubscriptionsCron,
		GenerateInvoices:    config.AppConfig.GenerateInvoicesCron,
		FlushLogs:           config.AppConfig.FlushLogsCron,
		ArchiveLogs:         config.AppConfig.ArchiveLogsCron,
		LogRetentionDays:    config.AppConfig.LogRetentionDays,
	}
	if database.GetRedisClient() == nil {
		schedules.FlushLogs = ""
	}
	maintenance := services.NewMaintenance(deps.Subscriptions, deps.Invoices, deps.Logs)
	if err := maintenance.Register(schedules); err != nil {
		log.Fatal("Failed to schedule maintenance jobs: ", err)
	}
	maintenance.Start()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(config.AppConfig.MaxFileSize) + 1024*1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Custom middleware
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.LogActivityMiddleware())

	routes.SetupRoutes(app, deps)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Ruta no encontrada",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logrus.Info("Shutting down")
		maintenance.Stop()
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("Server shutdown failed")
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":        config.AppConfig.Port,
		"environment": config.AppConfig.AppEnv,
	}).Info("Centro Ecuestre API starting")

	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
	database.Close()
}

// setupStorage returns the S3 voucher store. Development without AWS keys
// keeps vouchers in memory.
func setupStorage() storage.ObjectStore {
	if config.AppConfig.AppEnv == "development" && config.AppConfig.AWSAccessKeyID == "" {
		logrus.Warn("AWS credentials not configured, vouchers are kept in memory")
		return storage.NewMemoryStore()
	}
	s3Store, err := storage.NewS3Store(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize S3 storage: ", err)
	}
	return s3Store
}

// setupLogging configures the logging system
func setupLogging() {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// stdout in development, file otherwise
	if config.AppConfig.AppEnv == "development" {
		logrus.SetOutput(os.Stdout)
		return
	}
	file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logrus.SetOutput(file)
	}
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Error interno del servidor"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
