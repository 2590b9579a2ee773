package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"tunescout/cache"
	"tunescout/config"
	"tunescout/core/curated"
	"tunescout/core/enhancer"
	"tunescout/core/pipeline"
	"tunescout/core/spotify"
	"tunescout/db"
	"tunescout/logger"
	"tunescout/model"
	"tunescout/repository"
)

// Start initializes dependencies and runs the HTTP server until an
// interrupt arrives.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.CloseDB()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("failed to connect to database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	if err := db.InitDB(); err != nil {
		logger.Fatal("failed to initialize database schema", logger.ErrorField(err))
	}
	if err := db.AutoMigrateModels(&model.Interaction{}); err != nil {
		logger.Fatal("failed to migrate models", logger.ErrorField(err))
	}

	// The search cache is best-effort; a missing Redis only disables it.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, search caching disabled", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
	}

	spotifyClient := spotify.NewClient(
		cfg.SpotifyClientID,
		cfg.SpotifyClientSecret,
		cfg.SpotifyAPIURL,
		cfg.SpotifyAccountsURL,
		cfg.SpotifyMarket,
	)

	llmClient := enhancer.NewClient(enhancer.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMAPIBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	catalog, err := curated.NewCatalog()
	if err != nil {
		logger.Fatal("failed to load curated catalog", logger.ErrorField(err))
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if cfg.CuratedDataPath != "" {
		if err := catalog.LoadFile(cfg.CuratedDataPath); err != nil {
			logger.Warn("failed to load curated catalog override, using embedded table",
				logger.String("path", cfg.CuratedDataPath),
				logger.ErrorField(err))
		}
		go func() {
			if err := catalog.Watch(watchCtx, cfg.CuratedDataPath); err != nil {
				logger.Warn("curated catalog watcher stopped", logger.ErrorField(err))
			}
		}()
	}

	logger.Info("curated catalog ready", logger.Int("artists", len(catalog.ArtistNames())))

	resolver := curated.NewResolver(catalog, spotifyClient)
	discovery := pipeline.New(spotifyClient, llmClient, resolver, cfg.LLMEnabled())

	playlistRepo := repository.NewMySQLPlaylistRepository()
	interactionRepo := repository.NewGormInteractionRepository()

	apiHandler := NewAPIHandler(discovery, playlistRepo, interactionRepo, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Search endpoints
	router.HandleFunc("/api/search/text", apiHandler.TextSearchHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/search/sliders", apiHandler.SliderSearchHandler).Methods(http.MethodPost)

	// Voice endpoints
	router.HandleFunc("/api/voice/search", apiHandler.VoiceSearchHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/voice/process", apiHandler.VoiceProcessHandler).Methods(http.MethodPost)

	// Playlist endpoints
	router.HandleFunc("/api/playlist/save", apiHandler.SavePlaylistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/curate", apiHandler.CuratePlaylistHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/playlist/all", apiHandler.GetAllPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist/participant/{id}", apiHandler.GetParticipantPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist/{id:[0-9]+}", apiHandler.GetPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/playlist/{id:[0-9]+}", apiHandler.DeletePlaylistHandler).Methods(http.MethodDelete)

	// Interaction logging endpoints
	router.HandleFunc("/api/log/interaction", apiHandler.LogInteractionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/log/export", apiHandler.ExportInteractionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/log/participant/{id}", apiHandler.GetParticipantInteractionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/log/stats", apiHandler.InteractionStatsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/log/clear", apiHandler.ClearInteractionsHandler).Methods(http.MethodDelete)

	// Health
	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("port", cfg.ServerPort),
			logger.Bool("llmEnabled", cfg.LLMEnabled()))

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
