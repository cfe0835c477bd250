package routes

import (
	"log/slog"
	"time"

	"github.com/Surf-N-Code/padel-booking/internal/config"
	"github.com/Surf-N-Code/padel-booking/internal/controllers"
	authmw "github.com/Surf-N-Code/padel-booking/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type UserServicer interface {
	controllers.UserServicer
	controllers.ProfileCreator
}

type Services struct {
	Games  controllers.GameServicer
	Users  UserServicer
	Venues controllers.VenueServicer
	SSO    controllers.SSOClient
}

func SetupRouter(log *slog.Logger, svc Services, auth *authmw.AuthMiddleware, httpCfg config.HTTPServer, listHorizon time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if httpCfg.Timeout > 0 {
		// request contexts carry the deadline down to every store call
		r.Use(middleware.Timeout(httpCfg.Timeout))
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   httpCfg.Cors,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	rateLimit := httpCfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = 60
	}
	limiter := httprate.LimitByIP(rateLimit, time.Minute)

	gameController := controllers.NewGameController(svc.Games, svc.Users, listHorizon, log)
	authController := controllers.NewAuthController(log, svc.SSO, svc.Users)
	userController := controllers.NewUserController(svc.Users, log)
	venueController := controllers.NewVenueController(svc.Venues, log)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(limiter)
			r.Post("/register", authController.Register)
			r.Post("/login", authController.Login)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameController.List)
			r.Get("/{id}", gameController.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(auth.ValidateToken)
				r.Get("/{id}/players/me", gameController.IsPlayer)

				r.With(limiter).Post("/", gameController.Create)
				r.With(limiter).Post("/join", gameController.Join)
				r.With(limiter).Post("/leave", gameController.Leave)
				r.With(limiter).Post("/{id}/join", gameController.Join)
				r.With(limiter).Post("/{id}/leave", gameController.Leave)
			})
		})

		r.Get("/venues", venueController.List)

		r.Route("/user", func(r chi.Router) {
			r.Use(auth.ValidateToken)
			r.Get("/profile", userController.GetProfile)
			r.Put("/profile", userController.UpdateProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.ValidateToken)
			r.Use(auth.RequireAdmin)
			r.Post("/venues", venueController.Import)
			r.Put("/venues/{id}", venueController.Rename)
		})
	})

	return r
}
