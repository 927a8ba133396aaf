package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/teamsurvey/app"
	"github.com/mbolis/teamsurvey/httpx"
	"github.com/mbolis/teamsurvey/log"
	"github.com/mbolis/teamsurvey/model"
	"github.com/mbolis/teamsurvey/submission"
)

var reNoIdent = regexp.MustCompile(`\W+`)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey := model.SurveyInput{}
		if err := decodeStrict(r, &survey); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body: %s", err)
			return
		}
		if err := checkSurvey(survey); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, r, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		var surveyId int
		err = tx.QueryRowContext(r.Context(), `
			INSERT INTO survey (title, description, status) VALUES (?, ?, ?)
			RETURNING id`,
			survey.Title,
			survey.Description,
			model.StatusDraft,
		).Scan(&surveyId)
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_survey", err)
			return
		}

		if err = insertQuestions(r.Context(), tx, surveyId, survey.Questions); err != nil {
			httpx.LogInternalError(w, r, "db.insert_survey.questions", err)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, r, "db.insert_survey.commit", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": surveyId,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT s.id, s.version, s.title, s.description, s.status
			FROM survey s
			ORDER BY s.id`)
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_surveys", err)
			return
		}
		defer rows.Close()

		surveys := []model.Survey{}
		for rows.Next() {
			s := model.Survey{}
			err = rows.Scan(&s.ID, &s.Version, &s.Title, &s.Description, &s.Status)
			if err != nil {
				httpx.LogInternalError(w, r, "db.get_surveys.scan", err)
				return
			}

			surveys = append(surveys, s)
		}
		if err = rows.Err(); err != nil {
			httpx.LogInternalError(w, r, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
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

		render.JSON(w, r, survey)
	}
}

// UpdateSurvey replaces a draft survey and all of its questions. The client
// must send the version it read.
func UpdateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlParamId(w, r)
		if !ok {
			return
		}

		survey := model.SurveyInput{}
		if err := decodeStrict(r, &survey); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body: %s", err)
			return
		}
		if err := checkSurvey(survey); err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.validate", "%s", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, r, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		res, err := tx.ExecContext(r.Context(), `
			UPDATE survey
			SET
				title = ?,
				description = ?,
				version = version+1
			WHERE id = ?
				AND version = ?
				AND status = ?`,
			survey.Title,
			survey.Description,
			surveyId,
			survey.Version,
			model.StatusDraft,
		)
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_survey", err)
			return
		}
		// optimistic lock
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_survey.verify", err)
			return
		}
		if n < 1 {
			var status string
			err = tx.QueryRowContext(r.Context(), `SELECT status FROM survey WHERE id = ?`, surveyId).Scan(&status)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				httpx.LogNotFound(w, r, "update_survey", "survey", surveyId)
			case err != nil:
				httpx.LogInternalError(w, r, "db.update_survey.verify", err)
			case status != model.StatusDraft:
				httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "db.update_survey.verify.status", "survey is %s, only drafts can be edited", status)
			default:
				httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, "db.update_survey.verify.conflict", "survey was modified, reload it")
			}
			return
		}

		// recreate all questions
		_, err = tx.ExecContext(r.Context(), `
			DELETE FROM question
			WHERE survey_id = ?`,
			surveyId,
		)
		if err != nil {
			httpx.LogInternalError(w, r, "db.update_survey.delete_questions", err)
			return
		}
		if err = insertQuestions(r.Context(), tx, surveyId, survey.Questions); err != nil {
			httpx.LogInternalError(w, r, "db.update_survey.questions", err)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, r, "db.update_survey.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlParamId(w, r)
		if !ok {
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, r, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		// children first: nothing cascades
		for _, stmt := range []struct{ code, query string }{
			{"answers", `DELETE FROM answer WHERE response_id IN (SELECT id FROM response WHERE survey_id = ?)`},
			{"responses", `DELETE FROM response WHERE survey_id = ?`},
			{"questions", `DELETE FROM question WHERE survey_id = ?`},
		} {
			if _, err = tx.ExecContext(r.Context(), stmt.query, surveyId); err != nil {
				httpx.LogInternalError(w, r, "db.delete_survey."+stmt.code, err)
				return
			}
		}

		res, err := tx.ExecContext(r.Context(), `DELETE FROM survey WHERE id = ?`, surveyId)
		if err != nil {
			httpx.LogInternalError(w, r, "db.delete_survey", err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, r, "db.delete_survey.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, r, "delete_survey", "survey", surveyId)
			return
		}

		if err = tx.Commit(); err != nil {
			httpx.LogInternalError(w, r, "db.delete_survey.commit", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func PublishSurvey(app app.App) http.HandlerFunc {
	return transitionSurvey(app, model.StatusDraft, model.StatusPublished)
}

func CloseSurvey(app app.App) http.HandlerFunc {
	return transitionSurvey(app, model.StatusPublished, model.StatusClosed)
}

func transitionSurvey(app app.App, from, to string) http.HandlerFunc {
	code := "transition_survey." + to
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlParamId(w, r)
		if !ok {
			return
		}

		survey, err := app.Store.GetSurvey(r.Context(), surveyId)
		if errors.Is(err, submission.ErrNotFound) {
			httpx.LogNotFound(w, r, code, "survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db."+code, err)
			return
		}
		if to == model.StatusPublished && len(survey.Questions) == 0 {
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, code+".empty", "survey has no questions")
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE survey
			SET status = ?, version = version+1
			WHERE id = ? AND status = ?`,
			to,
			surveyId,
			from,
		)
		if err != nil {
			httpx.LogInternalError(w, r, "db."+code, err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, r, "db."+code+".verify", err)
			return
		}
		if n < 1 {
			httpx.LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, code+".conflict", "survey is not %s", from)
			return
		}

		log.WithFields(log.Fields{"survey_id": surveyId, "status": to}).Info("survey status changed")
		render.JSON(w, r, map[string]any{
			"id":     surveyId,
			"status": to,
		})
	}
}

func GetSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, ok := urlParamId(w, r)
		if !ok {
			return
		}

		_, err := app.Store.GetSurvey(r.Context(), surveyId)
		if errors.Is(err, submission.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_responses", "survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_responses.survey", err)
			return
		}

		responses, err := app.Store.ListResponses(r.Context(), surveyId)
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_responses", err)
			return
		}
		for i := range responses {
			responses[i] = submission.Shape(responses[i])
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

func GetResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseId := chi.URLParam(r, "rid")

		response, err := app.Store.GetResponse(r.Context(), responseId)
		if errors.Is(err, submission.ErrNotFound) {
			httpx.LogNotFound(w, r, "get_response", "response", responseId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_response", err)
			return
		}

		render.JSON(w, r, submission.Shape(response))
	}
}

func DeleteResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responseId := chi.URLParam(r, "rid")

		if err := app.Store.DeleteAnswers(r.Context(), responseId); err != nil {
			httpx.LogInternalError(w, r, "db.delete_response.answers", err)
			return
		}
		err := app.Store.DeleteResponse(r.Context(), responseId)
		if errors.Is(err, submission.ErrNotFound) {
			httpx.LogNotFound(w, r, "delete_response", "response", responseId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.delete_response", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func checkSurvey(survey model.SurveyInput) error {
	var result *multierror.Error
	if strings.TrimSpace(survey.Title) == "" {
		result = multierror.Append(result, errors.New("title: required"))
	}
	for i, q := range survey.Questions {
		if strings.TrimSpace(q.Type) == "" {
			result = multierror.Append(result, fmt.Errorf("questions[%d].type: required", i))
		}
		if strings.TrimSpace(q.Label) == "" {
			result = multierror.Append(result, fmt.Errorf("questions[%d].label: required", i))
		}
	}
	if result != nil {
		result.ErrorFormat = oneLine
	}
	return result.ErrorOrNil()
}

func insertQuestions(ctx context.Context, tx *sql.Tx, surveyId int, questions []model.QuestionInput) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (survey_id, type, name, label, required, options, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	labels := make([]string, len(questions))
	for i, q := range questions {
		labels[i] = q.Label
	}
	names := questionNames(labels)

	for i, q := range questions {
		var optionsJson []byte
		if q.Options != nil {
			optionsJson, err = json.Marshal(q.Options)
			if err != nil {
				return err
			}
		}
		sortOrder := i
		if q.SortOrder != nil {
			sortOrder = *q.SortOrder
		}

		_, err = stmt.ExecContext(ctx, surveyId, q.Type, names[i], q.Label, q.Required, string(optionsJson), sortOrder)
		if err != nil {
			return err
		}
	}
	return nil
}

// questionNames derives identifier-like names from labels, suffixing
// repeats with __1, __2... so every name in a survey is unique.
func questionNames(labels []string) []string {
	names := make([]string, len(labels))
	used := make(map[string]bool, len(labels))
	for i, label := range labels {
		base := strings.ToLower(label)
		base = reNoIdent.ReplaceAllLiteralString(base, " ")
		base = strings.Join(strings.Fields(base), "_")

		name := base
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s__%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}
