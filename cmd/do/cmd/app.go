package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/catalog/internal/app"
	"github.com/templui/catalog/internal/config"
	"github.com/templui/catalog/internal/db"
	"github.com/templui/catalog/internal/logger"
)

// withApp loads config, migrates and wires the app for the duration of fn
func withApp(fn func(a *app.App) error) error {
	cfg := config.Load()
	logger.Init(cfg)

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	return fn(a)
}

// withDB opens the database without running migrations
func withDB(fn func(cfg *config.Config, database *sqlx.DB) error) error {
	cfg := config.Load()
	logger.Init(cfg)

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	return fn(cfg, database)
}
