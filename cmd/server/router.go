package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/microlesson-api/internal/api"
	apiMiddleware "github.com/phrazzld/microlesson-api/internal/api/middleware"
)

// setupRouter registers every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(chimw.Recoverer)
	if app.metrics != nil {
		r.Use(apiMiddleware.Metrics(app.metrics))
	}

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	lessonHandler := api.NewLessonHandler(app.lessonService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		if app.limiter != nil {
			var onReject func()
			if app.metrics != nil {
				onReject = app.metrics.RateLimited.Inc
			}
			r.Use(apiMiddleware.RateLimit(app.limiter, app.config.RateLimit.Safelist, onReject))
		}

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/lessons", lessonHandler.Create)
			r.Get("/lessons", lessonHandler.List)
			r.Get("/lessons/{id}", lessonHandler.Get)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response")
		}
	})
	if app.metrics != nil {
		r.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	}

	return r
}
