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

	"github.com/viddel/wrooms/internal/api"
	"github.com/viddel/wrooms/internal/broker"
	"github.com/viddel/wrooms/internal/catalog"
	"github.com/viddel/wrooms/internal/config"
	"github.com/viddel/wrooms/internal/directory"
	"github.com/viddel/wrooms/internal/repository"
	"github.com/viddel/wrooms/internal/repository/memory"
	"github.com/viddel/wrooms/internal/repository/redis"
	"github.com/viddel/wrooms/internal/service"
	"github.com/viddel/wrooms/internal/web"
)

func main() {
	serverConfig := config.GetServerConfig()

	repo, err := newRepository(config.GetRedisConfig())
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	// Close the Redis connection properly on exit when in use
	if redisRepo, ok := repo.(interface{ Close() error }); ok {
		defer func() {
			if err := redisRepo.Close(); err != nil {
				log.Printf("Error closing Redis connection: %v", err)
			}
		}()
	}

	// Resolve identities against an external user service when configured,
	// otherwise use the seeded in-memory directory
	dir := newDirectory(config.GetDirectoryConfig())

	videoCatalog := catalog.NewMemoryCatalog()

	// One broadcast topic per room; SSE and WebSocket fan the events out
	eventBroker := broker.New()
	defer eventBroker.Close()

	partyService := service.NewPartyService(repo, dir, videoCatalog, eventBroker)

	sseManager := web.NewSSEManager(eventBroker)
	wsManager := web.NewWSManager(eventBroker)

	router := api.SetupRoutes(partyService, sseManager, wsManager)

	server := &http.Server{
		Addr:        ":" + serverConfig.Port,
		Handler:     router,
		ReadTimeout: serverConfig.ReadTimeout,
		// Write timeout stays disabled for SSE connections
		WriteTimeout: 0,
		IdleTimeout:  serverConfig.IdleTimeout,
	}

	// Channel to listen for errors coming from the listener
	serverErrors := make(chan error, 1)

	go func() {
		log.Printf("Starting wrooms server on port %s", serverConfig.Port)
		serverErrors <- server.ListenAndServe()
	}()

	// Block until a signal is received or an error occurs
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Error starting server: %v", err)

	case <-shutdown:
		log.Println("Shutting down server...")

		// Close live connections first so the server can drain
		sseManager.Shutdown()
		wsManager.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			log.Fatalf("Error shutting down server: %v", err)
		}

		log.Println("Server gracefully stopped")
	}
}

// newRepository creates the configured repository implementation.
// Redis is used when enabled; otherwise room state lives in memory only.
func newRepository(cfg config.RedisConfig) (repository.Repository, error) {
	if cfg.Enabled {
		repo, err := redis.NewRepository(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis repository: %w", err)
		}
		log.Printf("Using Redis repository at %s:%s", cfg.Host, cfg.Port)
		return repo, nil
	}

	log.Println("Using in-memory repository")
	return memory.NewRepository(), nil
}

// newDirectory picks the directory implementation from configuration
func newDirectory(cfg config.DirectoryConfig) directory.Directory {
	if cfg.BaseURL != "" {
		log.Printf("Using directory service at %s", cfg.BaseURL)
		return directory.NewAPIClient(cfg)
	}

	mem := directory.NewMemoryDirectory()
	if cfg.Users != "" {
		mem.Seed(cfg.Users)
	}
	log.Println("Using in-memory directory")
	return mem
}
