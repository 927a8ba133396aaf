// Package testutil holds helpers shared by the database and HTTP tests.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mbolis/teamsurvey/database"
	"github.com/mbolis/teamsurvey/log"
)

// SetupTestDB opens a fresh, fully migrated database in a temp directory.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	log.SetOutput(io.Discard)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// CreateTestSurvey inserts a survey with one text question per sort order
// and returns the survey ID and question IDs in the same order.
func CreateTestSurvey(t *testing.T, db *sql.DB, status string, sortOrders ...int) (int, []int) {
	t.Helper()

	var surveyID int
	err := db.QueryRow(`
		INSERT INTO survey (title, description, status)
		VALUES ('Test Survey', 'A test survey', ?)
		RETURNING id`,
		status,
	).Scan(&surveyID)
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	questionIDs := make([]int, len(sortOrders))
	for i, order := range sortOrders {
		err = db.QueryRow(`
			INSERT INTO question (survey_id, type, name, label, required, sort_order)
			VALUES (?, 'text', ?, ?, 0, ?)
			RETURNING id`,
			surveyID,
			"q_"+string(rune('a'+i)),
			"Question "+string(rune('A'+i)),
			order,
		).Scan(&questionIDs[i])
		if err != nil {
			t.Fatalf("Failed to create test question: %v", err)
		}
	}
	return surveyID, questionIDs
}

// CountRows counts the rows of table matching where.
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()

	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE "+where, args...).Scan(&n)
	if err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request with an optional JSON body.
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewBufferString(b))
		req.Header.Set("Content-Type", "application/json")
	default:
		jsonBody, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Fatalf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided value
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
