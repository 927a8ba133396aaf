package submission

import (
	"context"
	"errors"

	"github.com/mbolis/teamsurvey/model"
)

// ErrNotFound is returned by a Store when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store is the slice of the backing database the submission flow needs.
// Each method is a single independent call; nothing spans two of them.
type Store interface {
	GetSurvey(ctx context.Context, surveyID int) (model.Survey, error)
	InsertResponse(ctx context.Context, surveyID int, respondent model.Respondent) (string, error)
	// InsertAnswers writes the whole batch or nothing.
	InsertAnswers(ctx context.Context, responseID string, answers []model.AnswerInput) error
	DeleteResponse(ctx context.Context, responseID string) error
	GetResponse(ctx context.Context, responseID string) (model.Response, error)
}
