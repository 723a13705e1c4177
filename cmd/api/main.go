package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/jobtrackhq/jobtrack/internal/config"
	"github.com/jobtrackhq/jobtrack/internal/db"
)

func main() {
	cfg := config.Load()

	setupLogger(cfg.LogFormat)

	// Refuse to start in prod with the development signing key.
	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		slog.Error("JWT_SECRET must be set when ENV=prod")
		os.Exit(1)
	}

	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	r := newRouter(database, cfg)

	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		slog.Info("starting server with TLS", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		slog.Info("starting server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func setupLogger(format string) {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}
