package database_test

import (
	"path/filepath"
	"testing"

	"github.com/mbolis/teamsurvey/database"
	"github.com/mbolis/teamsurvey/testutil"
)

func TestOpenIsRepeatable(t *testing.T) {
	testutil.SetupTestDB(t)
	path := filepath.Join(t.TempDir(), "again.sqlite")

	for i := 0; i < 2; i++ {
		db, err := database.Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		if n := testutil.CountRows(t, db, "survey", "1 = 1"); n != 0 {
			t.Errorf("expected an empty survey table, got %d rows", n)
		}
		db.Close()
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := db.Exec(`INSERT INTO question (survey_id, type, name, label) VALUES (12345, 'text', 'q', 'Q')`)
	if err == nil {
		t.Fatal("expected a foreign key violation")
	}
}
