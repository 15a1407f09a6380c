package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"productos/internal/config"
	"productos/internal/database"
	"productos/internal/handlers"
	"productos/internal/repositories"
	"productos/internal/server"
	"productos/internal/services"
	"productos/pkg/rabbitmq"

	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// --clear wipes the data and exits without serving.
	if cfg.Clear {
		os.Exit(clearData(context.Background(), db))
	}

	// Not awaited: the server comes up even when the database is down.
	go func() {
		_ = database.Connect(context.Background(), db)
	}()

	// --- Product events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Product events disabled: %v", err)
		} else {
			defer mqClient.Close()
			publisher = mqClient
		}
	} else {
		log.Println("RABBITMQ_URL is not set. Product events are disabled.")
	}

	// --- Wiring ---
	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, publisher)
	productHandler := handlers.NewProductHandler(productService)

	app := server.NewApp(
		server.Options{FrontendURL: cfg.FrontendURL},
		server.Deps{
			Products: productHandler,
			Ping: func(ctx context.Context) error {
				return database.Ping(ctx, db)
			},
		},
	)

	// --- Start HTTP Server ---
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
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}

// clearData drops every product and resyncs the schema, returning the
// process exit code.
func clearData(ctx context.Context, db *gorm.DB) int {
	if err := database.Clear(ctx, db); err != nil {
		log.Printf("Error al eliminar los datos: %v", err)
		return 1
	}
	log.Println("Datos eliminados correctamente")
	return 0
}
