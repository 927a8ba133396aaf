package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/teamsurvey/app"
	"github.com/mbolis/teamsurvey/httpx"
	"github.com/mbolis/teamsurvey/log"
	"github.com/mbolis/teamsurvey/model"
	"github.com/mbolis/teamsurvey/routes/middlewares"
	"github.com/mbolis/teamsurvey/submission"
)

func PublicGetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlParamId(w, r)
		if !ok {
			return
		}

		survey, err := app.Store.GetSurvey(r.Context(), surveyId)
		if errors.Is(err, submission.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_survey", "survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_survey", err)
			return
		}

		if survey.Status != model.StatusPublished {
			httpx.LogStatusMsg(w, r, http.StatusForbidden, log.DebugLevel, "get_survey.not_published", "survey is not published")
			return
		}

		render.JSON(w, r, survey)
	}
}

func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlParamId(w, r)
		if !ok {
			return
		}

		req := model.SubmitResponseRequest{}
		if err := decodeStrict(r, &req); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body: %s", err)
			return
		}
		if err := submission.CheckRequest(req); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		respondent := submission.RespondentFrom(req.Respondent, middlewares.ClientIP(r))
		responseId, err := app.Writer.Submit(r.Context(), surveyId, respondent, req.Answers)

		var compErr *submission.CompensationError
		var writeErr *submission.WriteError
		switch {
		case err == nil:
		case errors.Is(err, submission.ErrSurveyNotFound):
			httpx.LogNotFound(w, r, "submit_response", "survey", surveyId)
			return
		case errors.Is(err, submission.ErrNotAcceptingResponses):
			httpx.LogStatusMsg(w, r, http.StatusForbidden, log.DebugLevel, "submit_response.not_accepting", "survey is not accepting responses")
			return
		case errors.Is(err, submission.ErrUnknownQuestion):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "submit_response.unknown_question", "%s", err)
			return
		case errors.As(err, &compErr):
			httpx.LogInternalError(w, r, "db.submit_response.compensate", err)
			return
		case errors.As(err, &writeErr):
			httpx.LogInternalError(w, r, "db.submit_response", err)
			return
		default:
			httpx.LogInternalError(w, r, "db.submit_response.validate", err)
			return
		}

		log.WithFields(log.Fields{"survey_id": surveyId, "response_id": responseId}).
			Info("response submitted")

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, model.SubmitResponseResponse{
			ResponseID: responseId,
			Message:    "Response submitted successfully",
		})
	}
}
