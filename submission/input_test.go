package submission

import (
	"strings"
	"testing"

	"github.com/mbolis/teamsurvey/model"
)

func TestCheckRequestValid(t *testing.T) {
	req := model.SubmitResponseRequest{
		Respondent: model.RespondentInput{Name: strp("Bob"), Email: strp("bob@example.com")},
		Answers: []model.AnswerInput{
			{QuestionID: 1, Text: strp("")},
			{QuestionID: 2, Selected: []string{}},
		},
	}
	if err := CheckRequest(req); err != nil {
		t.Fatalf("CheckRequest: %v", err)
	}
	if err := CheckRequest(model.SubmitResponseRequest{}); err != nil {
		t.Fatalf("empty request should be valid: %v", err)
	}
}

func TestCheckRequestReportsEveryProblem(t *testing.T) {
	req := model.SubmitResponseRequest{
		Respondent: model.RespondentInput{Email: strp("not-an-email")},
		Answers: []model.AnswerInput{
			{QuestionID: 0, Text: strp("a")},
			{QuestionID: 3},
			{QuestionID: 3, Text: strp("b"), Selected: []string{"x"}},
			{QuestionID: 4, Text: strp(strings.Repeat("é", maxTextLength+1))},
		},
	}

	err := CheckRequest(req)
	if err == nil {
		t.Fatal("expected an error")
	}
	msg := err.Error()
	for _, want := range []string{
		"respondent.email",
		"answers[0].question_id",
		"answers[1]: exactly one of text or selected",
		"answers[2].question_id: question 3 answered twice",
		"answers[2]: exactly one of text or selected",
		"answers[3].text",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
	if strings.Contains(msg, "\n") {
		t.Errorf("expected a single line message, got %q", msg)
	}
}

func TestCheckRequestTooManyAnswers(t *testing.T) {
	answers := make([]model.AnswerInput, maxAnswers+1)
	for i := range answers {
		answers[i] = model.AnswerInput{QuestionID: i + 1, Text: strp("x")}
	}
	err := CheckRequest(model.SubmitResponseRequest{Answers: answers})
	if err == nil || !strings.Contains(err.Error(), "more than") {
		t.Fatalf("expected too many answers error, got %v", err)
	}
}

func TestRespondentFrom(t *testing.T) {
	r := RespondentFrom(model.RespondentInput{Name: strp("  Ann "), Email: strp(" ann@example.com\n")}, "10.1.1.1")
	if r.Name != "Ann" || r.Email != "ann@example.com" || r.IP != "10.1.1.1" {
		t.Fatalf("unexpected respondent %+v", r)
	}

	anon := RespondentFrom(model.RespondentInput{}, "")
	if anon != (model.Respondent{}) {
		t.Fatalf("expected an empty respondent, got %+v", anon)
	}
}
