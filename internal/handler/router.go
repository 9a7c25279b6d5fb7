package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tawfi332/Fsociety-T/backend/internal/handler/stream"
	topichandler "github.com/tawfi332/Fsociety-T/backend/internal/handler/topic"
	turnhandler "github.com/tawfi332/Fsociety-T/backend/internal/handler/turn"
	middlewarePkg "github.com/tawfi332/Fsociety-T/backend/internal/middleware"
	"github.com/tawfi332/Fsociety-T/backend/internal/model/topic"
	turnservice "github.com/tawfi332/Fsociety-T/backend/internal/service/turn"
)

// NewRouter wires HTTP routes to the turn controller. metrics may be nil when
// metrics export is disabled.
func NewRouter(controller *turnservice.Controller, topics topic.Store, activeTopic string, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if metrics != nil {
		r.Handle("/metrics", metrics)
	}

	r.Route("/api", func(api chi.Router) {
		turnhandler.New(controller).RegisterRoutes(api)
		topichandler.New(topics, activeTopic).RegisterRoutes(api)
		stream.New(controller).RegisterRoutes(api)
	})

	return r
}
