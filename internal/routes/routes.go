package routes

import (
	"net/http"

	"github.com/templui/catalog/internal/app"
	"github.com/templui/catalog/internal/handler"
	"github.com/templui/catalog/internal/middleware"
	"github.com/templui/catalog/internal/storage"
	"github.com/templui/catalog/web"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	products := handler.NewProductHandler(app.ProductService, app.Markdown, app.Cfg.UploadMaxSize, app.Cfg.ProductPerPageMax)
	spa := handler.NewSPAHandler(web.Dist())

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Uploaded images (local driver only; S3 serves its own URLs)
	local, ok := app.Storage.(*storage.LocalStorage)
	if ok {
		mux.Handle("GET /storage/", http.StripPrefix("/storage/", handler.StorageHandler(local.Root())))
	}

	// Auth (rate limited)
	mux.HandleFunc("POST /api/login", middleware.RateLimitLogin(app.Cfg.TrustedProxies)(auth.Login))

	// ============================================================================
	// ADMIN ROUTES (/api/*)
	// ============================================================================

	mux.HandleFunc("GET /api/user", middleware.Admin(auth.User))
	mux.HandleFunc("GET /api/logout", middleware.Admin(auth.Logout))

	// Products
	mux.HandleFunc("GET /api/products", middleware.Admin(products.Index))
	mux.HandleFunc("POST /api/products", middleware.Admin(products.Store))
	mux.HandleFunc("GET /api/products/{id}", middleware.Admin(products.Show))
	mux.HandleFunc("PUT /api/products/{id}", middleware.Admin(products.Update))
	mux.HandleFunc("PATCH /api/products/{id}", middleware.Admin(products.Update))
	mux.HandleFunc("DELETE /api/products/{id}", middleware.Admin(products.Destroy))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// SPA shell, JSON 404 for unknown /api/ paths
	mux.Handle("/", spa)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}
