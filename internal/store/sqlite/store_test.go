// internal/store/sqlite/store_test.go
package sqlite

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
)

// setupTestDB creates a file-backed SQLite database with migrations applied
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(&store.DBConfig{
		DSN:           filepath.Join(t.TempDir(), "roster.db"),
		Type:          store.DBTypeSQLite,
		MigrationsDir: "../../../migrations",
	})
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestSaveAndLoadRoster(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	problems := models.ProblemList{"ITP1_1_A", "ITP1_1_B"}

	first := models.NewUserRecord("234567", "Sato", "Hanako", "sato")
	first.SetSlot("ITP1_1_A", models.SubmissionState{Score: 100, Date: 1683936000000, JudgeID: 12345})
	second := models.NewUserRecord("123456", "Yamada", "Taro", "yamada")

	t.Run("save roster", func(t *testing.T) {
		err := s.SaveRoster(ctx, problems, []models.UserRecord{first, second})
		require.NoError(t, err)
	})

	t.Run("load keeps order and pads slots", func(t *testing.T) {
		users, err := s.LoadRoster(ctx, problems)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "234567", users[0].StudentID)
		assert.Equal(t, "sato", users[0].AccountID)
		assert.Equal(t, first.Slot("ITP1_1_A"), users[0].Slot("ITP1_1_A"))
		assert.True(t, users[0].Slot("ITP1_1_B").IsNeverSubmitted())
		assert.Equal(t, "Yamada", users[1].Surname)
	})

	t.Run("save overwrites slots", func(t *testing.T) {
		second.SetSlot("ITP1_1_B", models.SubmissionState{Score: 40, Date: 10, JudgeID: 2})
		require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{first, second}))

		users, err := s.LoadRoster(ctx, problems)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, 40, users[1].Slot("ITP1_1_B").Score)
	})

	t.Run("problems outside the list are ignored", func(t *testing.T) {
		users, err := s.LoadRoster(ctx, models.ProblemList{"ITP1_1_B"})
		require.NoError(t, err)
		assert.Len(t, users[1].Slots, 1)
		assert.Equal(t, 0, users[0].Total(models.ProblemList{"ITP1_1_B"}))
	})
}

func TestLoadRoster_Empty(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	users, err := s.LoadRoster(context.Background(), models.ProblemList{"A"})
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = s.LoadRoster(context.Background(), nil)
	assert.Error(t, err)
}

func TestSaveRoster_BlankAndDuplicateIDs(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	problems := models.ProblemList{"P1"}
	a := models.NewUserRecord("", "A", "", "acc_a")
	a.SetSlot("P1", models.SubmissionState{Score: 100, Date: 1000, JudgeID: 7})
	b := models.NewUserRecord("", "B", "", "acc_b")
	c := models.NewUserRecord("42", "C", "", "acc_c")
	d := models.NewUserRecord("42", "D", "", "acc_d")
	d.SetSlot("P1", models.SubmissionState{Score: 30, Date: 2000, JudgeID: 8})

	require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{a, b, c, d}))

	users, err := s.LoadRoster(ctx, problems)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, []string{users[0].Surname, users[1].Surname, users[2].Surname, users[3].Surname})
	assert.Equal(t, models.SubmissionState{Score: 100, Date: 1000, JudgeID: 7}, users[0].Slot("P1"))
	assert.True(t, users[1].Slot("P1").IsNeverSubmitted())
	assert.True(t, users[2].Slot("P1").IsNeverSubmitted())
	assert.Equal(t, 30, users[3].Slot("P1").Score)
}

func TestSaveRoster_ShorterRosterReplaces(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	problems := models.ProblemList{"P1"}
	one := models.NewUserRecord("1", "One", "", "one")
	one.SetSlot("P1", models.SubmissionState{Score: 100, Date: 10, JudgeID: 1})
	two := models.NewUserRecord("2", "Two", "", "two")
	three := models.NewUserRecord("3", "Three", "", "three")

	require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{one, two}))
	require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{three}))

	users, err := s.LoadRoster(ctx, problems)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "3", users[0].StudentID)
	assert.True(t, users[0].Slot("P1").IsNeverSubmitted())

	var slots int
	require.NoError(t, s.DB.Get(&slots, "SELECT COUNT(*) FROM slots"))
	assert.Equal(t, 1, slots)

	require.NoError(t, s.SaveRoster(ctx, problems, nil))
	users, err = s.LoadRoster(ctx, problems)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestTranslateToSQLite(t *testing.T) {
	assert.Equal(t, "submitted_at INTEGER NOT NULL", translateToSQLite("submitted_at BIGINT NOT NULL"))
}
