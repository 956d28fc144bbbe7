package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/devadeboye/mini-jira/internal/models"
	"github.com/devadeboye/mini-jira/internal/repository"
)

func mustParseTime(value string) time.Time {
	dt, err := time.Parse("2006-01-02 15:04:05Z07:00", value)
	if err != nil {
		panic(err)
	}
	return dt
}

// createTestUser inserts a user to satisfy foreign keys in dependent tables
func createTestUser(t *testing.T, db DBTX, username string) models.User {
	t.Helper()

	repo := UserRepo{DB: db}
	user, err := repo.Create(t.Context(), repository.CreateUserParams{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "bcrypt-hash-placeholder",
		FullName:     "Test User",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
	})
	require.NoError(t, err, "test user should be created without errors")
	return user
}

func createTestProject(t *testing.T, tx pgx.Tx, owner models.User, name string) models.Project {
	t.Helper()

	repo := ProjectRepo{DB: tx}
	project, err := repo.Create(t.Context(), repository.CreateProjectParams{
		OwnerID:     owner.ID,
		Name:        name,
		Description: "test project",
	})
	require.NoError(t, err, "test project should be created without errors")
	return project
}

func createTestSprint(t *testing.T, tx pgx.Tx, project models.Project, name string) models.Sprint {
	t.Helper()

	repo := SprintRepo{DB: tx}
	sprint, err := repo.Create(t.Context(), repository.CreateSprintParams{
		ProjectID: project.ID,
		Name:      name,
		Goal:      "test goal",
	})
	require.NoError(t, err, "test sprint should be created without errors")
	return sprint
}
