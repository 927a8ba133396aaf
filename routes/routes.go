package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mbolis/teamsurvey/app"
	"github.com/mbolis/teamsurvey/log"
	"github.com/mbolis/teamsurvey/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.Logger,
		NoColor: true,
	})

	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	// forwarding headers are client input unless a proxy we run sets them
	if app.TrustProxy {
		root.Use(middleware.RealIP)
	}
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get(`/surveys/{id:^\d+$}`, PublicGetSurveyById(app))
	api.With(middlewares.RateLimit(app.Limiter)).
		Post(`/surveys/{id:^\d+$}/responses`, PublicSubmitResponse(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		// CRUD survey
		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get(`/surveys/{id:^\d+$}`, GetSurveyById(app))
		r.Put(`/surveys/{id:^\d+$}`, UpdateSurvey(app))
		r.Delete(`/surveys/{id:^\d+$}`, DeleteSurvey(app))

		// lifecycle
		r.Post(`/surveys/{id:^\d+$}/publish`, PublishSurvey(app))
		r.Post(`/surveys/{id:^\d+$}/close`, CloseSurvey(app))

		r.Get(`/surveys/{id:^\d+$}/responses`, GetSurveyResponses(app))
		r.Get(`/responses/{rid}`, GetResponse(app))
		r.Delete(`/responses/{rid}`, DeleteResponse(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
