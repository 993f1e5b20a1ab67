package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travelmarket/booking-backend/internal/models"
)

func userRowColumns() []string {
	return []string{"id", "external_id", "email", "full_name", "created_at", "updated_at"}
}

func TestEnsureUser(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := NewUserRepository(db)

	t.Run("Creates Missing User", func(t *testing.T) {
		userID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "auth0|abc", "jane@example.com", "").
			WillReturnRows(sqlmock.NewRows(userRowColumns()).AddRow(
				userID, "auth0|abc", "jane@example.com", "", now, now,
			))

		user, err := repo.Ensure("auth0|abc", "jane@example.com", "")
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "auth0|abc", user.ExternalID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Upserts Existing User", func(t *testing.T) {
		// The conflict path returns the existing row, not the generated id.
		existingID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs(sqlmock.AnyArg(), "auth0|abc", "new@example.com", "").
			WillReturnRows(sqlmock.NewRows(userRowColumns()).AddRow(
				existingID, "auth0|abc", "new@example.com", "Jane Doe", now, now,
			))

		user, err := repo.Ensure("auth0|abc", "new@example.com", "")
		require.NoError(t, err)
		assert.Equal(t, existingID, user.ID)
		assert.Equal(t, "new@example.com", user.Email)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByExternalID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := NewUserRepository(db)

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users WHERE external_id`).
			WithArgs("auth0|missing").
			WillReturnRows(sqlmock.NewRows(userRowColumns()))

		user, err := repo.GetByExternalID("auth0|missing")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
