package submission

import (
	"context"
	"errors"

	"github.com/mbolis/teamsurvey/model"
)

type Validator struct {
	store Store
}

func NewValidator(store Store) *Validator {
	return &Validator{store: store}
}

// Validate loads the survey and checks it accepts responses. It never writes.
func (v *Validator) Validate(ctx context.Context, surveyID int) (model.Survey, error) {
	survey, err := v.store.GetSurvey(ctx, surveyID)
	if errors.Is(err, ErrNotFound) {
		return model.Survey{}, ErrSurveyNotFound
	}
	if err != nil {
		return model.Survey{}, err
	}

	if survey.Status != model.StatusPublished {
		return survey, ErrNotAcceptingResponses
	}
	return survey, nil
}
