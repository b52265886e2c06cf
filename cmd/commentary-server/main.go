// Package main provides the commentary server entry point. The server
// hosts the lifecycle API and the reference resolver under one process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang/glog"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lampstand/commentary/pkg/commentary"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file (optional)")
	flag.Parse()

	// Initialize glog for backwards compatibility
	_ = flag.Set("logtostderr", "true")

	cfg, err := loadConfig(configPath)
	if err != nil {
		glog.Fatalf("Failed to load config: %v", err)
	}

	// Set up structured logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.GetString("log.level")),
	}))
	slog.SetDefault(logger)

	logger.Info("starting commentary server",
		"listen", cfg.GetString("listen"),
		"dbType", cfg.GetString("db.type"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	gormDB, err := setupDatabase(cfg.GetString("db.type"), cfg.GetString("db.dsn"))
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	entries := commentary.NewEntryStore(gormDB)
	segments := commentary.NewSegmentStore(gormDB)
	audit := commentary.NewAuditStore(gormDB)
	for _, m := range []interface{ AutoMigrate() error }{entries, segments, audit} {
		if err := m.AutoMigrate(); err != nil {
			glog.Fatalf("Failed to migrate database: %v", err)
		}
	}

	svc := commentary.NewLifecycleService(entries, audit)
	resolver := commentary.NewResolver(entries, segments)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.GetStringSlice("cors.allowedOrigins"),
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-User-Id", "X-User-Role"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Mount("/api/commentary/v1", commentary.NewRouter(svc, resolver, nil))

	httpServer := &http.Server{
		Addr:    cfg.GetString("listen"),
		Handler: router,
	}

	go func() {
		logger.Info("commentary server ready", "listen", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("commentary server stopped")
}

// loadConfig builds the server configuration from defaults, an optional
// config file, and COMMENTARY_* environment variables (highest
// precedence).
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("listen", ":8080")
	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.dsn", "commentary.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowedOrigins", []string{"*"})

	v.SetEnvPrefix("COMMENTARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required (set db.dsn or COMMENTARY_DB_DSN)")
	}

	var dialector gorm.Dialector
	switch dbType {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q (expected postgres, mysql, or sqlite)", dbType)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gormDB, nil
}
