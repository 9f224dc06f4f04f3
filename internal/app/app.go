package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/catalog/internal/config"
	"github.com/templui/catalog/internal/db"
	"github.com/templui/catalog/internal/markdown"
	"github.com/templui/catalog/internal/repository"
	"github.com/templui/catalog/internal/service"
	"github.com/templui/catalog/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.BlobStore
	Markdown       *markdown.Parser
	AuthService    *service.AuthService
	UserService    *service.UserService
	ProductService *service.ProductService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(context.Background(), database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Storage
	blobStore, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	return Build(cfg, database, blobStore), nil
}

// Build wires repositories and services over an open database and blob store
func Build(cfg *config.Config, database *sqlx.DB, blobStore storage.BlobStore) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	productRepository := repository.NewProductRepository(database)

	// Services
	authService := service.NewAuthService(
		userRepository,
		tokenRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
	)
	userService := service.NewUserService(userRepository)
	productService := service.NewProductService(productRepository, blobStore, cfg.ProductPurgeImageOnDelete)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        blobStore,
		Markdown:       markdown.NewParser(),
		AuthService:    authService,
		UserService:    userService,
		ProductService: productService,
	}
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
