package router

import (
	"net/http"

	"github.com/Dias221467/Friend_Manager/internal/config"
	"github.com/Dias221467/Friend_Manager/internal/handlers"
	"github.com/Dias221467/Friend_Manager/internal/hub"
	"github.com/Dias221467/Friend_Manager/internal/services"
	"github.com/Dias221467/Friend_Manager/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Config  *config.Config
	Users   *services.UserService
	Friends *services.FriendService
	Hub     *hub.Hub
}

// New wires every route and the middleware chain.
func New(deps Dependencies) http.Handler {
	cfg := deps.Config

	userHandler := handlers.NewUserHandler(deps.Users, cfg)
	friendHandler := handlers.NewFriendHandler(deps.Friends, deps.Hub)
	eventsHandler := handlers.NewEventsHandler(deps.Hub, cfg.JWTSecret)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	}).Methods("GET")

	// Websocket connections authenticate with a query token and are long
	// lived, so they sit outside the timeout and header-auth chains.
	router.HandleFunc("/ws/events", eventsHandler.ServeWS).Methods("GET")

	api := router.NewRoute().Subrouter()
	api.Use(middleware.Timeout(cfg.DBTimeout))

	api.HandleFunc("/signup", userHandler.SignupHandler).Methods("POST")
	api.HandleFunc("/login", userHandler.LoginHandler).Methods("POST")

	protectedUserRoutes := api.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("", userHandler.ListUsersHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/search", userHandler.SearchUsersHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}/friendship", friendHandler.FriendshipHandler).Methods("GET")

	protectedFriendRoutes := api.PathPrefix("/friend-requests").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	limiter := middleware.NewUserRateLimiter(cfg.FriendRequestRate, cfg.FriendRequestBurst)
	protectedFriendRoutes.Handle("", middleware.RateLimitPerUser(limiter)(
		http.HandlerFunc(friendHandler.SendFriendRequestHandler),
	)).Methods("POST")
	protectedFriendRoutes.HandleFunc("/pending", friendHandler.GetPendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/accepted", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.GetFriendRequestHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.ResolveFriendRequestHandler).Methods("PATCH")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}
