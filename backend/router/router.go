package router

import (
	"net/http"
	"time"

	"bookshelf/backend/app/controllers"
	"bookshelf/backend/app/middleware"
	"bookshelf/backend/app/response"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
)

type Controllers struct {
	HTTP  *controllers.HTTPController
	Books *controllers.BookController
	Auth  *controllers.AuthController
	Admin *controllers.AdminController
	DB    *controllers.DBController
	View  *controllers.ViewController
}

type Options struct {
	Log            zerolog.Logger
	AllowedOrigins []string
	// RateLimit of zero disables limiting on the auth and reconnect routes.
	RateLimit       int
	RateLimitWindow time.Duration
}

func NewRouter(c Controllers, mw *middleware.Auth, db middleware.ConnectionChecker, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.NotFound(c.HTTP.NotFound)
	r.MethodNotAllowed(c.HTTP.MethodNotAllowed)

	limit := rateLimiter(opts)
	requireDB := middleware.RequireDatabase(db)

	r.With(mw.OptionalAuth).Get("/", c.View.Dashboard)
	r.Get("/health", c.HTTP.Health)

	r.Route("/api/books", func(r chi.Router) {
		r.With(requireDB).Get("/", c.Books.List)
		r.Get("/filters/genres", c.Books.Genres)
		r.Get("/filters/authors", c.Books.Authors)
		r.Get("/stats", c.Books.Stats)
		r.Get("/{id}", c.Books.Get)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthenticateToken)
			r.Post("/", c.Books.Create)
			r.Put("/{id}", c.Books.Update)
			r.Delete("/{id}", c.Books.Delete)
		})
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limit).Post("/register", c.Auth.Register)
		r.With(limit).Post("/login", c.Auth.Login)
		r.Post("/logout", c.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(mw.AuthenticateToken)
			r.Get("/me", c.Auth.Me)
			r.Put("/password", c.Auth.ChangePassword)

			r.Route("/users", func(r chi.Router) {
				r.Use(mw.RequireAdmin)
				r.Get("/", c.Admin.ListUsers)
				r.Post("/", c.Admin.CreateUser)
				r.Get("/{id}", c.Admin.GetUser)
				r.Put("/{id}/role", c.Admin.UpdateRole)
				r.Delete("/{id}", c.Admin.DeleteUser)
			})
		})
	})

	r.Route("/api/db", func(r chi.Router) {
		r.Get("/status", c.DB.Status)
		r.With(limit).Post("/reconnect", c.DB.Reconnect)
	})

	return r
}

func rateLimiter(opts Options) func(http.Handler) http.Handler {
	if opts.RateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := opts.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(opts.RateLimit, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.Fail(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
	)
}
