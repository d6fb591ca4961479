// Package main provides the game server binary: websocket gateway, game
// core, content store, and PostgreSQL persistence.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dungeonmaister/gameserver/internal/config"
	"github.com/dungeonmaister/gameserver/internal/game/content"
	"github.com/dungeonmaister/gameserver/internal/game/dice"
	"github.com/dungeonmaister/gameserver/internal/game/session"
	"github.com/dungeonmaister/gameserver/internal/game/worldstate"
	"github.com/dungeonmaister/gameserver/internal/gateway"
	"github.com/dungeonmaister/gameserver/internal/narrative"
	"github.com/dungeonmaister/gameserver/internal/observability"
	"github.com/dungeonmaister/gameserver/internal/scripting"
	"github.com/dungeonmaister/gameserver/internal/server"
	"github.com/dungeonmaister/gameserver/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting game server", zap.String("addr", cfg.Server.Addr()))

	// Load content
	contentStart := time.Now()
	store, err := content.Load(cfg.Game.ContentDir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.String("dir", cfg.Game.ContentDir),
		zap.Int("kingdoms", len(store.Kingdoms())),
		zap.Int("items", len(store.Items())),
		zap.Int("abilities", len(store.Abilities())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	// Load effect scripts
	effects := scripting.NewEngine(cfg.Game.ScriptInstructionLimit, logger)
	defer effects.Close()
	if err := effects.LoadDir(cfg.Game.ScriptDir); err != nil {
		logger.Fatal("loading effect scripts", zap.Error(err))
	}

	// Connect to PostgreSQL for save persistence
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	saves := pool.Saves()

	// Narrative generator: disabled without an API key so local runs work
	// offline with the fixed fallback.
	var generator narrative.Generator
	if cfg.LLM.APIKey != "" {
		generator = narrative.NewAnthropicGenerator(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens, logger)
		logger.Info("narrative generator enabled", zap.String("model", cfg.LLM.Model))
	} else {
		generator = narrative.NewDisabled(logger)
		logger.Warn("no llm.api_key configured, narration disabled")
	}

	world := worldstate.NewTracker(store.Factions(), store.WorldEvents(), logger)
	sessions := session.NewManager()

	gw := gateway.New(
		sessions,
		store,
		generator,
		saves,
		effects,
		world,
		dice.NewLoggedSource(dice.NewCryptoSource(), logger),
		gateway.Config{MapWidth: cfg.Game.MapWidth, MapHeight: cfg.Game.MapHeight},
		logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/ws", gw)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Health(r.Context(), 5*time.Second); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: mux,
	}

	// Wire lifecycle
	lifecycle := server.NewLifecycle(logger, cfg.Server.ShutdownTimeout)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("http server listening", zap.String("addr", cfg.Server.Addr()))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	healthStop := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-healthStop:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(healthStop)
			pool.Close()
		},
	})

	logger.Info("game server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
