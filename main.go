package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inkwell-app/inkwell-be/internal/api"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/config"
	"github.com/inkwell-app/inkwell-be/internal/database"
	"github.com/inkwell-app/inkwell-be/internal/logger"
	"github.com/inkwell-app/inkwell-be/internal/monitoring"
	"github.com/inkwell-app/inkwell-be/internal/services"
	"github.com/inkwell-app/inkwell-be/internal/storage"
	"github.com/inkwell-app/inkwell-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()

	// Ensure the directory for uploaded images exists
	if err := os.MkdirAll(cfg.ImagesPath, 0755); err != nil {
		log.Fatalf("Failed to create images directory: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the token codec used by login and the authentication gate
	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)

	// Set up the image store
	imageStore := storage.NewImageStore(cfg.ImagesPath)

	// Set up WebSocket Hub for the live activity feed
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db, hub)
	userService := services.NewUserService(db, codec, eventService)
	postService := services.NewPostService(db, imageStore, eventService, cfg.PageSize)

	// Set up and run the background orphaned-image sweeper
	sweeper, err := monitoring.NewSweeper(db, imageStore, cfg.SweepSchedule)
	if err != nil {
		log.Fatalf("Failed to initialize image sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(codec, hub, userService, postService, eventService, imageStore)

	// Set up server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	sweeper.Stop() // Stop the background sweep

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
