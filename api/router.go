package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
	"github.com/rs/zerolog"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Auth       *service.AuthService
	Catalog    *service.CatalogService
	Collection *service.CollectionService
	Images     *service.ImageService
	// Assistant is optional; chat routes are mounted only when it is set.
	Assistant *service.AssistantService
	Ping      func(context.Context) error
	Logger    zerolog.Logger

	CORSOrigins []string
	// AuthRateLimit is requests per minute per client IP on /api/auth.
	AuthRateLimit int
}

// NewRouter wires every route of the API.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		auth:       d.Auth,
		catalog:    d.Catalog,
		collection: d.Collection,
		images:     d.Images,
		assistant:  d.Assistant,
		ping:       d.Ping,
		logger:     d.Logger,
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	authLimit := d.AuthRateLimit
	if authLimit <= 0 {
		authLimit = 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recoverer(d.Logger))
	r.Use(utils.LatencyMiddleware(d.Logger))
	r.Use(PrometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, nil, "Can't find "+r.URL.Path+" on this server", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(httprate.LimitByIP(authLimit, time.Minute))
				r.Post("/register", h.Register)
				r.Post("/login", h.Login)
			})
			r.With(h.RequireAuth).Post("/logout", h.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/me", h.Me)
			r.Get("/", h.ListUsers)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/{id}", h.GetUser)
				r.Patch("/{id}/status", h.SetUserStatus)
				r.Patch("/{id}/role", h.SetUserRole)
			})
		})

		r.Route("/fragrances", func(r chi.Router) {
			r.Get("/", h.ListFragrances)
			r.Get("/categories", h.Categories)
			r.Get("/brands", h.Brands)
			r.Get("/{id}", h.GetFragrance)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Put("/{id}/rating", h.SubmitRating)

				r.Group(func(r chi.Router) {
					r.Use(RequireAdmin)
					r.Post("/", h.CreateFragrance)
					r.Put("/{id}", h.UpdateFragrance)
					r.Delete("/{id}", h.ArchiveFragrance)
					r.Post("/{id}/images", h.UploadImage)
					r.Delete("/{id}/images/{imageId}", h.DeleteImage)
				})
			})
		})

		r.Route("/collection", func(r chi.Router) {
			r.Use(h.RequireAuth)
			r.Get("/", h.ListCollection)
			r.Get("/stats", h.CollectionStats)
			r.Post("/", h.AddToCollection)
			r.Put("/{id}", h.UpdateCollectionItem)
			r.Delete("/{id}", h.RemoveFromCollection)
			r.Post("/{id}/wear", h.MarkWorn)
		})

		if h.assistant != nil {
			r.Route("/chat", func(r chi.Router) {
				r.Use(h.RequireAuth)
				r.Post("/", h.SendChatMessage)
				r.Get("/history", h.ChatHistory)
			})
		}
	})

	return r
}
