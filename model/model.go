package model

import "time"

// Survey lifecycle states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusClosed    = "closed"
)

type Survey struct {
	ID          int        `json:"id,omitempty"`
	Version     int        `json:"version,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status,omitempty"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID        int    `json:"id,omitempty"`
	SurveyID  int    `json:"survey_id,omitempty"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	Required  bool   `json:"required"`
	Options   any    `json:"options,omitempty"`
	SortOrder int    `json:"sort_order"`
}

type Respondent struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	IP    string `json:"ip,omitempty"`
}

type Response struct {
	ID          string     `json:"id"`
	SurveyID    int        `json:"survey_id"`
	Respondent  Respondent `json:"respondent"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Answers     []Answer   `json:"answers"`
}

// Answer is one response's value for one question. Question is nil when
// the referenced question no longer exists.
type Answer struct {
	ID         int          `json:"id"`
	ResponseID string       `json:"response_id"`
	QuestionID *int         `json:"question_id"`
	Text       *string      `json:"text,omitempty"`
	Selected   []string     `json:"selected,omitempty"`
	Question   *QuestionRef `json:"question,omitempty"`
}

type QuestionRef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	SortOrder int    `json:"sort_order"`
}

// Request types

type SubmitResponseRequest struct {
	Respondent RespondentInput `json:"respondent"`
	Answers    []AnswerInput   `json:"answers"`
}

type RespondentInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type AnswerInput struct {
	QuestionID int      `json:"question_id"`
	Text       *string  `json:"text,omitempty"`
	Selected   []string `json:"selected,omitempty"`
}

// Response types

type SubmitResponseResponse struct {
	ResponseID string `json:"response_id"`
	Message    string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SurveyInput struct {
	Version     int             `json:"version,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions"`
}

// QuestionInput.SortOrder defaults to the question's position when omitted.
type QuestionInput struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Required  bool   `json:"required"`
	Options   any    `json:"options,omitempty"`
	SortOrder *int   `json:"sort_order,omitempty"`
}
