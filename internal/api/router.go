package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jortiz/teammatch/internal/api/handlers"
	"github.com/jortiz/teammatch/internal/api/middleware"
	"github.com/jortiz/teammatch/internal/identity"
	"github.com/jortiz/teammatch/internal/repository"
	"github.com/jortiz/teammatch/internal/service"
	"github.com/jortiz/teammatch/internal/websocket"
	"github.com/sirupsen/logrus"
)

func NewRouter(services *service.Services, hub *websocket.Hub, repos *repository.Repositories, verifier identity.Verifier, log *logrus.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handlers.NewAuthHandler(services.Auth)
	projectHandler := handlers.NewProjectHandler(services.Project)
	reputationHandler := handlers.NewReputationHandler(services.Reputation)
	matchingHandler := handlers.NewMatchingHandler(services.Matching)
	messageHandler := handlers.NewMessageHandler(services.Message)
	notificationHandler := handlers.NewNotificationHandler(services.Notification)
	profileHandler := handlers.NewProfileHandler(repos.User, services.Auth)
	wsHandler := handlers.NewWebSocketHandler(hub, log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(verifier))
				r.Get("/me", authHandler.Me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(verifier))

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", projectHandler.Create)
				r.Get("/mine", projectHandler.ListMine)
				r.Get("/{id}", projectHandler.Get)
				r.Get("/{id}/members", projectHandler.Members)
				r.Post("/{id}/join", projectHandler.Join)
				r.Post("/{id}/leave", projectHandler.Leave)
				r.Post("/{id}/complete", projectHandler.Complete)
			})

			r.Route("/reputation", func(r chi.Router) {
				r.Post("/rate", reputationHandler.Rate)
				r.Get("/{userId}/history", reputationHandler.History)
				r.Get("/{userId}/summary", reputationHandler.Summary)
			})

			r.Get("/recommendations", matchingHandler.Recommend)

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", messageHandler.Send)
				r.Get("/unread", messageHandler.UnreadCount)
				r.Get("/with/{userId}", messageHandler.Conversation)
				r.Post("/{id}/read", messageHandler.MarkRead)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread", notificationHandler.UnreadCount)
				r.Post("/{id}/read", notificationHandler.MarkRead)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Put("/skills", profileHandler.UpdateSkills)
				r.Put("/domains", profileHandler.UpdateDomains)
				r.Put("/availability", profileHandler.UpdateAvailability)
			})
		})

		// Authentication happens over the socket itself.
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
