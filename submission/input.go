package submission

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"

	"github.com/mbolis/teamsurvey/model"
)

const (
	maxAnswers    = 500
	maxTextLength = 10000
	maxNameLength = 200
	maxEmailLen   = 320
)

// CheckRequest validates the shape of a submission body, reporting every
// problem at once. It does not look at the survey.
func CheckRequest(req model.SubmitResponseRequest) error {
	var result *multierror.Error

	if n := req.Respondent.Name; n != nil && utf8.RuneCountInString(*n) > maxNameLength {
		result = multierror.Append(result, fmt.Errorf("respondent.name: longer than %d characters", maxNameLength))
	}
	if e := req.Respondent.Email; e != nil {
		email := strings.TrimSpace(*e)
		if len(email) > maxEmailLen || (email != "" && !strings.Contains(email, "@")) {
			result = multierror.Append(result, fmt.Errorf("respondent.email: not an email address"))
		}
	}

	if len(req.Answers) > maxAnswers {
		result = multierror.Append(result, fmt.Errorf("answers: more than %d answers", maxAnswers))
	}

	seen := make(map[int]bool, len(req.Answers))
	for i, a := range req.Answers {
		switch {
		case a.QuestionID <= 0:
			result = multierror.Append(result, fmt.Errorf("answers[%d].question_id: must be a positive integer", i))
		case seen[a.QuestionID]:
			result = multierror.Append(result, fmt.Errorf("answers[%d].question_id: question %d answered twice", i, a.QuestionID))
		}
		seen[a.QuestionID] = true

		if (a.Text == nil) == (a.Selected == nil) {
			result = multierror.Append(result, fmt.Errorf("answers[%d]: exactly one of text or selected is required", i))
		}
		if a.Text != nil && utf8.RuneCountInString(*a.Text) > maxTextLength {
			result = multierror.Append(result, fmt.Errorf("answers[%d].text: longer than %d characters", i, maxTextLength))
		}
	}

	if result != nil {
		result.ErrorFormat = joinErrors
	}
	return result.ErrorOrNil()
}

// RespondentFrom trims the optional respondent fields and adds the client IP.
func RespondentFrom(in model.RespondentInput, ip string) model.Respondent {
	r := model.Respondent{IP: ip}
	if in.Name != nil {
		r.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		r.Email = strings.TrimSpace(*in.Email)
	}
	return r
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
