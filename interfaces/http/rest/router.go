package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tripchat/infrastructure/di"
	"tripchat/interfaces/http/rest/handlers"
	"tripchat/interfaces/http/rest/middleware"
)

// Router creates and configures the HTTP router for the chat API
type Router struct {
	container *di.Container
}

// NewRouter creates a new router instance
func NewRouter(container *di.Container) *Router {
	return &Router{container: container}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	c := rt.container

	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(c.Logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(c.Accounts, c.TokenIssuer, c.Logger)
	convHandler := handlers.NewConversationHandler(c.ConvService, c.Logger)
	msgHandler := handlers.NewMessageHandler(c.ChatService, c.Logger)
	toolHandler := handlers.NewToolHandler(c.Amadeus, c.Nominatim, c.Logger)

	// Health check
	router.Get("/health", rt.healthCheck)

	// Public account endpoints
	router.Post("/users", authHandler.Register)
	router.Post("/login", authHandler.Login)
	router.Post("/refresh", authHandler.Refresh)

	// Travel tool endpoints, called back by the reasoning pipeline
	router.Route("/tools", func(r chi.Router) {
		r.Get("/get-flight-offers", toolHandler.FlightOffers)
		r.Get("/get-airport-info", toolHandler.AirportInfo)
		r.Get("/search-hotels-near-to-place", toolHandler.HotelsNearPlace)
		r.Get("/search-activities-near-place", toolHandler.ActivitiesNearPlace)
		r.Get("/find-latitude-longitude", toolHandler.FindLatitudeLongitude)
		r.Get("/most-traveled-destinations", toolHandler.MostTraveledDestinations)
	})

	// Authenticated conversation endpoints
	router.Route("/{userID}/conversations", func(r chi.Router) {
		r.Use(middleware.Authenticate(c.TokenIssuer, c.RateLimiter, c.Logger))
		r.Use(middleware.MatchPathUser())

		r.Get("/", convHandler.List)
		r.Post("/", convHandler.Create)

		r.Route("/{conversationID}", func(r chi.Router) {
			r.Get("/", convHandler.Get)
			r.Put("/", convHandler.Rename)
			r.Delete("/", convHandler.Delete)
			r.Put("/date", convHandler.Touch)
			r.Get("/messages", convHandler.Messages)
			r.Post("/messages", msgHandler.Send)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
