package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/humidor-app/humidor-be/internal/api/handlers"
	"github.com/humidor-app/humidor-be/internal/auth"
	"github.com/humidor-app/humidor-be/internal/config"
	"github.com/humidor-app/humidor-be/internal/ratelimit"
	"github.com/humidor-app/humidor-be/internal/services"
)

// Services bundles the dependencies the router needs.
type Services struct {
	DB        *sql.DB
	Users     services.UserServiceProvider
	Humidors  services.HumidorServiceProvider
	Shares    services.ShareServiceProvider
	Cigars    services.CigarServiceProvider
	Organizer services.OrganizerServiceProvider
	Catalog   handlers.BackupCatalog

	// LoginLimiter throttles the login endpoint. The caller owns its
	// lifecycle and stops it on shutdown.
	LoginLimiter *ratelimit.Limiter
}

// NewRouter creates and configures a new Chi router.
func NewRouter(cfg *config.Config, deps Services) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(deps.Users)
	setupHandler := handlers.NewSetupHandler(deps.Users, deps.Humidors, deps.Catalog, cfg.MaxUploadBytes)
	adminHandler := handlers.NewAdminHandler(deps.Users)
	humidorHandler := handlers.NewHumidorHandler(deps.Humidors, deps.Shares, deps.Users)
	cigarHandler := handlers.NewCigarHandler(deps.Cigars, deps.Humidors)
	organizerHandler := handlers.NewOrganizerHandler(deps.Organizer)
	backupHandler := handlers.NewBackupHandler(deps.Catalog, cfg.MaxUploadBytes)
	imageHandler := handlers.NewImageHandler(cfg.UploadPath)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	loginLimiter := deps.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = ratelimit.New(5, 15*time.Minute)
	}

	// Uploaded images are served from the media root the backup engine
	// archives.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadPath))))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Get("/health", healthHandler.Check)
		r.Get("/setup/status", setupHandler.Status)
		r.Post("/setup", setupHandler.Run)
		r.Post("/setup/restore", setupHandler.RestoreBackup)
		r.With(loginLimiter.Middleware).Post("/auth/login", userHandler.Login)
		r.Post("/auth/logout", userHandler.Logout)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(auth.JWTMiddleware())

			r.Get("/auth/me", userHandler.GetMe)
			r.Put("/auth/me", userHandler.UpdateMe)
			r.Post("/auth/change-password", userHandler.ChangePassword)

			r.Route("/humidors", func(r chi.Router) {
				r.Get("/", humidorHandler.GetAll)
				r.Post("/", humidorHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", humidorHandler.Get)
					r.Put("/", humidorHandler.Update)
					r.Delete("/", humidorHandler.Delete)
					r.Get("/cigars", cigarHandler.GetAllForHumidor)
					r.Route("/shares", func(r chi.Router) {
						r.Get("/", humidorHandler.GetShares)
						r.Post("/", humidorHandler.Share)
						r.Put("/{shareId}", humidorHandler.UpdateShare)
						r.Delete("/{shareId}", humidorHandler.RevokeShare)
					})
				})
			})

			r.Route("/cigars", func(r chi.Router) {
				r.Post("/", cigarHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cigarHandler.Get)
					r.Put("/", cigarHandler.Update)
					r.Delete("/", cigarHandler.Delete)
					r.Post("/quantity", cigarHandler.AdjustQuantity)
					r.Put("/favorite", cigarHandler.AddFavorite)
					r.Delete("/favorite", cigarHandler.RemoveFavorite)
					r.Put("/wishlist", cigarHandler.AddWishListItem)
					r.Delete("/wishlist", cigarHandler.RemoveWishListItem)
				})
			})
			r.Get("/favorites", cigarHandler.GetFavorites)
			r.Get("/wishlist", cigarHandler.GetWishList)

			r.Route("/organizers", func(r chi.Router) {
				r.Get("/brands", organizerHandler.GetBrands)
				r.Post("/brands", organizerHandler.CreateBrand)
				r.Put("/brands/{id}", organizerHandler.UpdateBrand)
				r.Delete("/brands/{id}", organizerHandler.DeleteBrand)

				r.Get("/sizes", organizerHandler.GetSizes)
				r.Post("/sizes", organizerHandler.CreateSize)
				r.Put("/sizes/{id}", organizerHandler.UpdateSize)
				r.Delete("/sizes/{id}", organizerHandler.DeleteSize)

				r.Get("/ring-gauges", organizerHandler.GetRingGauges)
				r.Post("/ring-gauges", organizerHandler.CreateRingGauge)
				r.Put("/ring-gauges/{id}", organizerHandler.UpdateRingGauge)
				r.Delete("/ring-gauges/{id}", organizerHandler.DeleteRingGauge)

				r.Get("/strengths", organizerHandler.GetStrengths)
				r.Post("/strengths", organizerHandler.CreateStrength)
				r.Put("/strengths/{id}", organizerHandler.UpdateStrength)
				r.Delete("/strengths/{id}", organizerHandler.DeleteStrength)

				r.Get("/origins", organizerHandler.GetOrigins)
				r.Post("/origins", organizerHandler.CreateOrigin)
				r.Put("/origins/{id}", organizerHandler.UpdateOrigin)
				r.Delete("/origins/{id}", organizerHandler.DeleteOrigin)
			})

			r.Post("/images", imageHandler.Upload)

			// Admin-only endpoints
			r.Group(func(r chi.Router) {
				r.Use(auth.AdminOnly)

				r.Route("/admin/users", func(r chi.Router) {
					r.Get("/", adminHandler.ListUsers)
					r.Post("/", adminHandler.CreateUser)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", adminHandler.GetUser)
						r.Put("/", adminHandler.UpdateUser)
						r.Delete("/", adminHandler.DeleteUser)
						r.Post("/reset-password", adminHandler.ResetPassword)
					})
				})

				r.Route("/backups", func(r chi.Router) {
					r.Get("/", backupHandler.List)
					r.Post("/", backupHandler.Create)
					r.Post("/upload", backupHandler.Upload)
					r.Route("/{filename}", func(r chi.Router) {
						r.Get("/download", backupHandler.Download)
						r.Post("/restore", backupHandler.Restore)
						r.Delete("/", backupHandler.Delete)
					})
				})
			})
		})
	})

	return r
}
