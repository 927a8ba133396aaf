package submission

import (
	"context"
	"errors"
	"testing"

	"github.com/mbolis/teamsurvey/model"
)

func TestValidate(t *testing.T) {
	store := newFakeStore(
		model.Survey{ID: 1, Status: model.StatusDraft},
		model.Survey{ID: 2, Status: model.StatusPublished},
		model.Survey{ID: 3, Status: model.StatusClosed},
	)
	v := NewValidator(store)

	tests := []struct {
		id   int
		want error
	}{
		{1, ErrNotAcceptingResponses},
		{2, nil},
		{3, ErrNotAcceptingResponses},
		{4, ErrSurveyNotFound},
	}
	for _, tt := range tests {
		survey, err := v.Validate(context.Background(), tt.id)
		if !errors.Is(err, tt.want) {
			t.Errorf("Validate(%d) = %v, want %v", tt.id, err, tt.want)
		}
		if tt.want == nil && survey.ID != tt.id {
			t.Errorf("Validate(%d) returned survey %d", tt.id, survey.ID)
		}
	}
}

type brokenStore struct {
	*fakeStore
	err error
}

func (s brokenStore) GetSurvey(context.Context, int) (model.Survey, error) {
	return model.Survey{}, s.err
}

func TestValidatePassesStoreErrors(t *testing.T) {
	dbErr := errors.New("connection reset")
	v := NewValidator(brokenStore{newFakeStore(), dbErr})

	_, err := v.Validate(context.Background(), 1)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if errors.Is(err, ErrSurveyNotFound) || errors.Is(err, ErrNotAcceptingResponses) {
		t.Fatal("store failures must not look like validation failures")
	}
}
