package submission

import (
	"context"
	"fmt"
	"sync"

	"github.com/mbolis/teamsurvey/model"
)

// fakeStore keeps rows in memory; the *Fn hooks override single calls.
type fakeStore struct {
	mu        sync.Mutex
	surveys   map[int]model.Survey
	responses map[string]model.Response
	nextID    int
	calls     []string

	insertResponseFn func(surveyID int) error
	insertAnswersFn  func(answers []model.AnswerInput) error
	deleteResponseFn func(responseID string) error
}

func newFakeStore(surveys ...model.Survey) *fakeStore {
	fs := &fakeStore{
		surveys:   map[int]model.Survey{},
		responses: map[string]model.Response{},
	}
	for _, s := range surveys {
		fs.surveys[s.ID] = s
	}
	return fs
}

func (fs *fakeStore) GetSurvey(_ context.Context, surveyID int) (model.Survey, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.calls = append(fs.calls, "GetSurvey")

	s, ok := fs.surveys[surveyID]
	if !ok {
		return model.Survey{}, ErrNotFound
	}
	return s, nil
}

func (fs *fakeStore) InsertResponse(_ context.Context, surveyID int, respondent model.Respondent) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.calls = append(fs.calls, "InsertResponse")

	if fs.insertResponseFn != nil {
		if err := fs.insertResponseFn(surveyID); err != nil {
			return "", err
		}
	}
	fs.nextID++
	id := fmt.Sprintf("resp-%d", fs.nextID)
	fs.responses[id] = model.Response{ID: id, SurveyID: surveyID, Respondent: respondent, Answers: []model.Answer{}}
	return id, nil
}

func (fs *fakeStore) InsertAnswers(_ context.Context, responseID string, answers []model.AnswerInput) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.calls = append(fs.calls, "InsertAnswers")

	if fs.insertAnswersFn != nil {
		if err := fs.insertAnswersFn(answers); err != nil {
			return err
		}
	}
	r := fs.responses[responseID]
	for _, a := range answers {
		qid := a.QuestionID
		r.Answers = append(r.Answers, model.Answer{ResponseID: responseID, QuestionID: &qid, Text: a.Text, Selected: a.Selected})
	}
	fs.responses[responseID] = r
	return nil
}

func (fs *fakeStore) DeleteResponse(ctx context.Context, responseID string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.calls = append(fs.calls, "DeleteResponse")

	if err := ctx.Err(); err != nil {
		return err
	}
	if fs.deleteResponseFn != nil {
		if err := fs.deleteResponseFn(responseID); err != nil {
			return err
		}
	}
	if _, ok := fs.responses[responseID]; !ok {
		return ErrNotFound
	}
	delete(fs.responses, responseID)
	return nil
}

func (fs *fakeStore) GetResponse(_ context.Context, responseID string) (model.Response, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	r, ok := fs.responses[responseID]
	if !ok {
		return model.Response{}, ErrNotFound
	}
	return r, nil
}

func (fs *fakeStore) writes() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, c := range fs.calls {
		if c != "GetSurvey" {
			n++
		}
	}
	return n
}
