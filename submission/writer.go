package submission

import (
	"context"
	"fmt"

	"github.com/mbolis/teamsurvey/log"
	"github.com/mbolis/teamsurvey/model"
)

// Writer stores a response together with its answers. The store offers no
// transaction spanning both tables, so a failed answer batch is undone by
// deleting the response that was just written.
type Writer struct {
	store     Store
	validator *Validator
}

func NewWriter(store Store) *Writer {
	return &Writer{
		store:     store,
		validator: NewValidator(store),
	}
}

// Submit validates the survey, then writes the response and its answers.
// It returns the new response ID, or one of ErrSurveyNotFound,
// ErrNotAcceptingResponses, ErrUnknownQuestion, *WriteError or
// *CompensationError.
func (w *Writer) Submit(ctx context.Context, surveyID int, respondent model.Respondent, answers []model.AnswerInput) (string, error) {
	survey, err := w.validator.Validate(ctx, surveyID)
	if err != nil {
		return "", err
	}
	if err = checkQuestions(survey, answers); err != nil {
		return "", err
	}

	responseID, err := w.store.InsertResponse(ctx, surveyID, respondent)
	if err != nil {
		return "", &WriteError{Op: "insert response", Err: err}
	}

	if len(answers) == 0 {
		return responseID, nil
	}

	err = w.store.InsertAnswers(ctx, responseID, answers)
	if err == nil {
		return responseID, nil
	}

	writeErr := &WriteError{Op: "insert answers", Err: err}
	logger := log.WithFields(log.Fields{"survey_id": surveyID, "response_id": responseID})

	// compensation runs once, with no retry, even if the caller already gave up
	if delErr := w.store.DeleteResponse(context.WithoutCancel(ctx), responseID); delErr != nil {
		logger.WithError(delErr).Error("submission.compensate: response left without answers")
		return "", &CompensationError{ResponseID: responseID, Write: writeErr, Err: delErr}
	}
	logger.WithError(err).Warn("submission.compensate: response deleted after failed answers")

	return "", writeErr
}

func checkQuestions(survey model.Survey, answers []model.AnswerInput) error {
	known := make(map[int]bool, len(survey.Questions))
	for _, q := range survey.Questions {
		known[q.ID] = true
	}
	for i, a := range answers {
		if !known[a.QuestionID] {
			return fmt.Errorf("answers[%d]: %w: question %d", i, ErrUnknownQuestion, a.QuestionID)
		}
	}
	return nil
}
