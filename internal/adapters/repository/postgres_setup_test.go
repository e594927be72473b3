package repository

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// setupTestDB connects to the integration database and migrates it. Tests
// are skipped when Postgres is not reachable.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("DB_USER", "kanso_user"),
		envOr("DB_PASSWORD", "secret"),
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration test: postgres not reachable: %v", err)
	}

	require.NoError(t, RunMigrations(db.DB))

	db.MustExec(`TRUNCATE weekly_progress, goals, group_members, groups, users CASCADE`)

	t.Cleanup(func() {
		db.MustExec(`TRUNCATE weekly_progress, goals, group_members, groups, users CASCADE`)
		db.Close()
	})

	return db
}

func seedUser(t *testing.T, repo *PostgresUserRepository) *domain.User {
	t.Helper()

	user, err := domain.NewUser(uuid.NewString(), fmt.Sprintf("user_%s@example.com", uuid.NewString()[:8]))
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("passwordStrong123"))
	require.NoError(t, repo.Create(t.Context(), user))
	return user
}

func seedScheduledGoal(t *testing.T, repo *PostgresGoalRepository, userID string) *domain.Goal {
	t.Helper()

	goal, err := domain.NewGoal(userID, "Read every week", 4)
	require.NoError(t, err)
	require.NoError(t, goal.Schedule(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.Create(t.Context(), goal))
	return goal
}
