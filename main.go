package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"ihub/api"
	"ihub/config"
	"ihub/handlers"
	"ihub/services/catalog"
	"ihub/services/favorites"
	"ihub/services/gate"
	"ihub/services/player"
	"ihub/utils"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	flag.Parse()

	fmt.Println("🚀 ihub Backend Starting...")

	// Determine config path (env or default)
	configPath := os.Getenv("IHUB_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	// Set up file logging with rotation
	if settings.Log.File != "" {
		logDir := filepath.Dir(settings.Log.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   settings.Log.File,
				MaxSize:    settings.Log.MaxSize,
				MaxBackups: settings.Log.MaxBackups,
				MaxAge:     settings.Log.MaxAge,
				Compress:   settings.Log.Compress,
			}
			multiWriter := io.MultiWriter(os.Stdout, fileWriter)
			log.SetOutput(multiWriter)
			log.SetFlags(log.LstdFlags | log.Lshortfile)
			log.Printf("Logging to file: %s", settings.Log.File)
		}
	}

	// Apply port override if specified
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	// Generate access PIN on first run
	if strings.TrimSpace(settings.Gate.PinHash) == "" {
		pin, err := utils.GeneratePIN()
		if err != nil {
			log.Fatalf("failed to generate PIN: %v", err)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash PIN: %v", err)
		}
		settings.Gate.PinHash = string(hash)
		if err := cfgManager.Save(settings); err != nil {
			log.Fatalf("failed to persist generated PIN: %v", err)
		}
		fmt.Printf("🔑 ihub PIN: %s\n", pin)
		fmt.Println("📱 Configure your frontend to use this 6-digit PIN for authentication.")
	}

	if strings.TrimSpace(settings.Catalog.TMDBAPIKey) == "" {
		fmt.Println("⚠️  No TMDB API key configured, catalog queries will return empty pages.")
	}

	// Construct router
	r := utils.NewRouter()

	// Services
	catalogService := catalog.NewService(settings.Catalog.TMDBAPIKey, settings.Catalog.Language, settings.Cache.Directory, settings.Cache.TTLHours)
	favoritesService, err := favorites.NewService(settings.Storage.Directory)
	if err != nil {
		log.Fatalf("failed to init favorites: %v", err)
	}
	gateService := gate.NewService(settings.Gate.PinHash)
	playerService := player.NewService(time.Duration(settings.Player.LoadTimeoutSeconds) * time.Second)

	// Handlers
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	favoritesHandler := handlers.NewFavoritesHandler(favoritesService)
	authHandler := handlers.NewAuthHandler(gateService)
	playerHandler := handlers.NewPlayerHandler(playerService, player.DefaultNavigationPolicy())

	api.Register(r, catalogHandler, favoritesHandler, authHandler, playerHandler)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s\n", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Setup graceful shutdown
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}
