package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/mbolis/teamsurvey/model"
	"github.com/mbolis/teamsurvey/submission"
)

// Store implements submission.Store over a SQLite database. Every method is
// one statement; none of them opens a transaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ submission.Store = (*Store)(nil)

func (s *Store) GetSurvey(ctx context.Context, surveyID int) (model.Survey, error) {
	survey := model.Survey{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, version, title, description, status
		FROM survey
		WHERE id = ?`,
		surveyID,
	).Scan(&survey.ID, &survey.Version, &survey.Title, &survey.Description, &survey.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, submission.ErrNotFound
	}
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "select survey")
	}

	survey.Questions, err = s.questions(ctx, surveyID)
	if err != nil {
		return model.Survey{}, err
	}
	return survey, nil
}

func (s *Store) questions(ctx context.Context, surveyID int) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, type, name, label, required, options, sort_order
		FROM question
		WHERE survey_id = ?
		ORDER BY sort_order, id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		var opts string
		err = rows.Scan(&q.ID, &q.SurveyID, &q.Type, &q.Name, &q.Label, &q.Required, &opts, &q.SortOrder)
		if err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		if opts != "" {
			if err = json.Unmarshal([]byte(opts), &q.Options); err != nil {
				return nil, errors.Wrapf(err, "parse options of question %d", q.ID)
			}
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "select questions")
}

func (s *Store) InsertResponse(ctx context.Context, surveyID int, respondent model.Respondent) (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "generate response id")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO response (id, survey_id, respondent_name, respondent_email, ip, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(),
		surveyID,
		respondent.Name,
		respondent.Email,
		respondent.IP,
		time.Now().UTC(),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert response")
	}
	return id.String(), nil
}

// InsertAnswers writes the batch as a single multi-row INSERT, which SQLite
// applies entirely or not at all.
func (s *Store) InsertAnswers(ctx context.Context, responseID string, answers []model.AnswerInput) error {
	if len(answers) == 0 {
		return nil
	}

	values := make([]string, len(answers))
	args := make([]any, 0, 4*len(answers))
	for i, a := range answers {
		var selected *string
		if a.Selected != nil {
			selectedJson, err := json.Marshal(a.Selected)
			if err != nil {
				return errors.Wrapf(err, "encode answer %d", i)
			}
			str := string(selectedJson)
			selected = &str
		}

		values[i] = "(?, ?, ?, ?)"
		args = append(args, responseID, a.QuestionID, a.Text, selected)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO answer (response_id, question_id, text, selected) VALUES "+strings.Join(values, ", "),
		args...,
	)
	return errors.Wrap(err, "insert answers")
}

func (s *Store) DeleteResponse(ctx context.Context, responseID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM response WHERE id = ?`, responseID)
	if err != nil {
		return errors.Wrap(err, "delete response")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete response")
	}
	if n < 1 {
		return submission.ErrNotFound
	}
	return nil
}

// DeleteAnswers removes every answer of a response; it must run before
// DeleteResponse when the response has answers.
func (s *Store) DeleteAnswers(ctx context.Context, responseID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM answer WHERE response_id = ?`, responseID)
	return errors.Wrap(err, "delete answers")
}

func (s *Store) GetResponse(ctx context.Context, responseID string) (model.Response, error) {
	r := model.Response{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, survey_id, respondent_name, respondent_email, ip, submitted_at
		FROM response
		WHERE id = ?`,
		responseID,
	).Scan(&r.ID, &r.SurveyID, &r.Respondent.Name, &r.Respondent.Email, &r.Respondent.IP, &r.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Response{}, submission.ErrNotFound
	}
	if err != nil {
		return model.Response{}, errors.Wrap(err, "select response")
	}

	byID, err := s.answers(ctx, `a.response_id = ?`, responseID)
	if err != nil {
		return model.Response{}, err
	}
	r.Answers = byID[r.ID]
	if r.Answers == nil {
		r.Answers = []model.Answer{}
	}
	return r, nil
}

// ListResponses returns the responses of a survey, oldest first.
func (s *Store) ListResponses(ctx context.Context, surveyID int) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, respondent_name, respondent_email, ip, submitted_at
		FROM response
		WHERE survey_id = ?
		ORDER BY submitted_at, id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r := model.Response{}
		err = rows.Scan(&r.ID, &r.SurveyID, &r.Respondent.Name, &r.Respondent.Email, &r.Respondent.IP, &r.SubmittedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		responses = append(responses, r)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "select responses")
	}

	byID, err := s.answers(ctx, `r.survey_id = ?`, surveyID)
	if err != nil {
		return nil, err
	}
	for i := range responses {
		responses[i].Answers = byID[responses[i].ID]
		if responses[i].Answers == nil {
			responses[i].Answers = []model.Answer{}
		}
	}
	return responses, nil
}

// answers loads answers joined with their (possibly deleted) question,
// grouped by response ID, in insertion order.
func (s *Store) answers(ctx context.Context, where string, arg any) (map[string][]model.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			a.id, a.response_id, a.question_id, a.text, a.selected,
			q.id, q.name, q.label, q.sort_order
		FROM answer a
		INNER JOIN response r ON (r.id = a.response_id)
		LEFT OUTER JOIN question q ON (q.id = a.question_id)
		WHERE `+where+`
		ORDER BY a.id`,
		arg,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select answers")
	}
	defer rows.Close()

	byResponse := map[string][]model.Answer{}
	for rows.Next() {
		a := model.Answer{}
		var questionID, refID, sortOrder sql.NullInt64
		var text, selected, name, label sql.NullString
		err = rows.Scan(
			&a.ID, &a.ResponseID, &questionID, &text, &selected,
			&refID, &name, &label, &sortOrder,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan answer")
		}

		if questionID.Valid {
			id := int(questionID.Int64)
			a.QuestionID = &id
		}
		if text.Valid {
			a.Text = &text.String
		}
		if selected.Valid {
			if err = json.Unmarshal([]byte(selected.String), &a.Selected); err != nil {
				return nil, errors.Wrapf(err, "parse selection of answer %d", a.ID)
			}
		}
		if refID.Valid {
			a.Question = &model.QuestionRef{
				ID:        int(refID.Int64),
				Name:      name.String,
				Label:     label.String,
				SortOrder: int(sortOrder.Int64),
			}
		}

		byResponse[a.ResponseID] = append(byResponse[a.ResponseID], a)
	}
	return byResponse, errors.Wrap(rows.Err(), "select answers")
}
