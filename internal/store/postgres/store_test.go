package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
)

// setupTestDB starts a throwaway Postgres container and applies migrations
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(&store.DBConfig{
		DSN:           dsn,
		Type:          store.DBTypePostgres,
		MigrationsDir: "../../../migrations",
	})
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		container.Terminate(ctx)
	}

	return s, cleanup
}

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestSaveAndLoadRoster(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	problems := models.ProblemList{"ITP1_1_A", "ITP1_1_B"}
	u := models.NewUserRecord("123456", "Yamada", "Taro", "yamada")
	u.SetSlot("ITP1_1_B", models.SubmissionState{Score: 100, Date: 1683936000000, JudgeID: 12345})

	t.Run("save roster", func(t *testing.T) {
		require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{u}))
	})

	t.Run("load roster", func(t *testing.T) {
		users, err := s.LoadRoster(ctx, problems)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "yamada", users[0].AccountID)
		assert.Equal(t, u.Slot("ITP1_1_B"), users[0].Slot("ITP1_1_B"))
		assert.True(t, users[0].Slot("ITP1_1_A").IsNeverSubmitted())
	})

	t.Run("save is idempotent", func(t *testing.T) {
		require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{u}))
		users, err := s.LoadRoster(ctx, problems)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})
}

func TestSaveRoster_ReplacesRoster(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	problems := models.ProblemList{"P1"}
	a := models.NewUserRecord("1", "Sato", "Hanako", "sato")
	b := models.NewUserRecord("2", "Suzuki", "Ken", "suzuki")
	require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{a, b}))

	b.SetSlot("P1", models.SubmissionState{Score: 70, Date: 500, JudgeID: 9})
	b.Surname = "Suzuki-Tanaka"
	require.NoError(t, s.SaveRoster(ctx, problems, []models.UserRecord{b, a}))

	users, err := s.LoadRoster(ctx, problems)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "2", users[0].StudentID, "position follows the last save")
	assert.Equal(t, "Suzuki-Tanaka", users[0].Surname)
	assert.Equal(t, models.SubmissionState{Score: 70, Date: 500, JudgeID: 9}, users[0].Slot("P1"))
	assert.True(t, users[1].Slot("P1").IsNeverSubmitted())
}
