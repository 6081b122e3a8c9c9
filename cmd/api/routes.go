package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/mediadrop/uploader/internal/config"
	appMiddleware "github.com/mediadrop/uploader/internal/middleware"
	"github.com/mediadrop/uploader/internal/response"
	"github.com/mediadrop/uploader/internal/storage"
	"github.com/mediadrop/uploader/internal/upload"
)

func newRouter(cfg *config.Config, store storage.AssetStore) http.Handler {
	uploadHandler := upload.NewHandler(store, upload.PolicyFromConfig(cfg))

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(appMiddleware.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.MethodNotAllowed(w)
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Post("/upload", uploadHandler.Upload)

	// Local-disk deployments serve the stored files themselves.
	if static, ok := store.(storage.StaticServer); ok {
		r.Method(http.MethodGet, static.URLPrefix()+"/*", static.FileServer())
		r.Method(http.MethodHead, static.URLPrefix()+"/*", static.FileServer())
	}

	return r
}
