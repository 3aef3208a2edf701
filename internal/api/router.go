package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inkwell-app/inkwell-be/internal/api/handlers"
	"github.com/inkwell-app/inkwell-be/internal/auth"
	"github.com/inkwell-app/inkwell-be/internal/services"
	"github.com/inkwell-app/inkwell-be/internal/storage"
	"github.com/inkwell-app/inkwell-be/internal/websocket"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	codec *auth.TokenCodec,
	hub *websocket.Hub,
	userService services.UserServiceProvider,
	postService services.PostServiceProvider,
	eventService services.EventServiceProvider,
	images *storage.ImageStore,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// The gate annotates every request with its authentication result; it
	// never rejects, each operation decides for itself.
	r.Use(auth.Gate(codec))

	// Initialize handlers
	queryHandler := handlers.NewQueryHandler(userService, postService)
	uploadHandler := handlers.NewUploadHandler(images)
	eventHandler := handlers.NewEventHandler(eventService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	// Uploaded images are served statically, same paths the upload endpoint returns.
	fileServer := http.StripPrefix("/images/", http.FileServer(http.Dir(images.Dir())))
	r.Get("/images/*", fileServer.ServeHTTP)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// The single query/mutation endpoint.
		r.Post("/query", queryHandler.Serve)

		// Image upload runs outside the query endpoint; the client passes
		// the returned path back into createPost/updatePost.
		r.Put("/post-image", uploadHandler.Upload)

		// Activity feed: recent history plus a live stream.
		r.Get("/events", eventHandler.GetRecent)
		r.Get("/ws", wsHandler.Serve)
	})

	return r
}
