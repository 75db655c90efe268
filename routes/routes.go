package routes

import (
	"github.com/courtpulse/badminton-system/handlers"
	"github.com/courtpulse/badminton-system/middleware"
	"github.com/courtpulse/badminton-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	matchHandler *handlers.MatchHandler,
	statsHandler *handlers.StatsHandler,
	achievementHandler *handlers.AchievementHandler,
	circleHandler *handlers.CircleHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)

		r.Get("/ws/notifications", webSocketHandler.ServeNotifications)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", userHandler.GetMe)
			r.Patch("/", userHandler.UpdateMe)
			r.Put("/weekly-goal", userHandler.SetWeeklyGoal)
			r.Post("/avatar", userHandler.UploadAvatar)
			r.Get("/matches", matchHandler.ListMine)
			r.Get("/stats", statsHandler.Overview)
			r.Get("/stats/summary", statsHandler.Summary)
			r.Get("/achievements", achievementHandler.ListMine)
			r.Get("/circles", circleHandler.ListMine)
		})

		r.Get("/users/{userID}", userHandler.GetByID)

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", matchHandler.Create)
			r.Get("/{matchID}", matchHandler.GetByID)
			r.Delete("/{matchID}", matchHandler.Delete)
			r.Post("/{matchID}/confirm", matchHandler.Confirm)
			r.Post("/{matchID}/share", matchHandler.Share)
			r.Post("/{matchID}/media", matchHandler.UploadMedia)
		})

		r.Route("/circles", func(r chi.Router) {
			r.Get("/", circleHandler.List)
			r.Post("/", circleHandler.Create)
			r.Get("/{circleID}", circleHandler.GetByID)
			r.Patch("/{circleID}", circleHandler.Update)
			r.Delete("/{circleID}", circleHandler.Delete)
			r.Post("/{circleID}/join", circleHandler.Join)
			r.Delete("/{circleID}/leave", circleHandler.Leave)
			r.Get("/{circleID}/members", circleHandler.Members)
			r.Post("/{circleID}/members/{userID}/approve", circleHandler.ApproveMember)
			r.Delete("/{circleID}/members/{userID}", circleHandler.RemoveMember)
			r.Post("/{circleID}/transfer", circleHandler.TransferOwnership)
			r.Get("/{circleID}/leaderboard", circleHandler.Leaderboard)
			r.Post("/{circleID}/invites", circleHandler.CreateInvite)
		})

		r.Post("/invites/{token}/accept", circleHandler.AcceptInvite)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Get("/admin/dashboard", dashboardHandler.GetStats)
			r.Post("/admin/users/{userID}/achievements", achievementHandler.Grant)
		})
	})
}
