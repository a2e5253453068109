package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wordgarden/internal/config"
	"wordgarden/internal/database"
	"wordgarden/internal/engine/mastery"
	"wordgarden/internal/engine/match"
	"wordgarden/internal/engine/reward"
	"wordgarden/internal/engine/selection"
	"wordgarden/internal/handlers"
	"wordgarden/internal/repository"
	"wordgarden/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg.DatabaseType, database.DialectConfig{
		Path: cfg.DatabasePath,
		URL:  cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	itemRepo := repository.NewItemRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	companionRepo := repository.NewCompanionRepository(db)

	// Initialize the practice engine
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	practiceService := service.NewPracticeService(
		itemRepo,
		sessionRepo,
		companionRepo,
		match.New(cfg.Engine.Match),
		mastery.New(cfg.Engine.Mastery),
		selection.New(cfg.Engine.Selection, rng),
		reward.New(cfg.Engine.Reward),
		cfg.SessionSize,
	)

	// Initialize handlers
	practiceHandler := handlers.NewPracticeHandler(practiceService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/children/{childID}/items", practiceHandler.AddItem)
	mux.HandleFunc("GET /api/children/{childID}/items", practiceHandler.ListItems)
	mux.HandleFunc("POST /api/children/{childID}/sessions", practiceHandler.StartSession)
	mux.HandleFunc("POST /api/sessions/{token}/attempts", practiceHandler.SubmitAttempt)
	mux.HandleFunc("POST /api/sessions/{token}/complete", practiceHandler.CompleteSession)
	mux.HandleFunc("GET /api/children/{childID}/companion", practiceHandler.Companion)
	mux.HandleFunc("GET /api/children/{childID}/struggling", practiceHandler.Struggling)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
