package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ledfit-api/internal/application/auth"
	"github.com/ledfit-api/internal/application/board"
	"github.com/ledfit-api/internal/application/catalog"
	"github.com/ledfit-api/internal/application/notification"
	"github.com/ledfit-api/internal/application/progress"
	"github.com/ledfit-api/internal/application/user"
	"github.com/ledfit-api/internal/config"
	jwtinfra "github.com/ledfit-api/internal/infrastructure/jwt"
	"github.com/ledfit-api/internal/transport/http/handler"
	appmiddleware "github.com/ledfit-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
// Images, Cache, Publisher, BoardCommands and GoogleVerifier are optional and must be left
// nil (not a typed nil pointer) when the backing service is not configured.
type Deps struct {
	UserRepo         UserRepository
	NotificationRepo NotificationRepository
	ExerciseRepo     ExerciseRepository
	WorkoutRepo      WorkoutRepository
	BoardRepo        BoardRepository
	Images           ImageSigner
	Cache            CatalogCache
	Publisher        UnlockPublisher
	BoardCommands    BoardCommander
	GoogleVerifier   IDTokenVerifier
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(deps.JWTProvider)

	// 5 requests/second, burst of 10, applied to credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo, WorkoutRepo: deps.WorkoutRepo})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:       deps.UserRepo,
		JWTProvider:    deps.JWTProvider,
		GoogleVerifier: deps.GoogleVerifier,
	})
	progressSvc := progress.NewService(progress.ServiceDeps{
		UserRepo:         deps.UserRepo,
		NotificationRepo: deps.NotificationRepo,
		Publisher:        deps.Publisher,
		MaxAttempts:      cfg.ProgressMaxAttempts,
	})
	notifSvc := notification.NewService(deps.NotificationRepo)
	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		ExerciseRepo: deps.ExerciseRepo,
		WorkoutRepo:  deps.WorkoutRepo,
		Cache:        deps.Cache,
		CacheTTL:     cfg.CatalogCacheTTL,
		Images:       deps.Images,
	})
	boardSvc := board.NewService(board.ServiceDeps{
		UserRepo:  deps.UserRepo,
		BoardRepo: deps.BoardRepo,
		Commands:  deps.BoardCommands,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(userSvc, authSvc)
	userH := handler.NewUserHandler(userSvc)
	progressH := handler.NewProgressHandler(progressSvc)
	notifH := handler.NewNotificationHandler(notifSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	boardH := handler.NewBoardHandler(boardSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/login", authH.Login)
		r.With(sensitiveRL.Limit).Post("/oauth", authH.OAuth)
		r.Get("/exercises", catalogH.ListExercises)
		r.Get("/exercises/{id}", catalogH.GetExercise)
		r.Get("/workouts", catalogH.ListWorkouts)
		r.Get("/workouts/{id}", catalogH.GetWorkout)

		// Authenticated routes
		r.Route("/auth", func(r chi.Router) {
			r.Use(authMw)

			r.Get("/profile", userH.Profile)
			r.Put("/profile", userH.UpdateProfile)
			r.Put("/password", userH.ChangePassword)
			r.Put("/metrics", progressH.UpdateMetrics)
			r.Put("/achievements", progressH.UpdateAchievements)
			r.Get("/favs", userH.ListFavs)
			r.Post("/favs/{id}", userH.AddFav)
			r.Delete("/favs/{id}", userH.RemoveFav)
			r.Get("/notifications", notifH.List)
			r.Post("/notifications", notifH.Create)
			r.Put("/notifications/{id}/read", notifH.MarkAsRead)
			r.Delete("/notifications/{id}", notifH.Delete)
			r.Get("/board", boardH.Status)
			r.Post("/board/sync-time", boardH.SyncTime)
			r.Post("/workout/state", boardH.WorkoutState)
		})
	})

	return r
}
