package sql

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"portal/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("should find the user", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "fullname"}).
				AddRow(id, "user@example.com", "Jane Doe"))

		user, err := GetUserByEmail(db, " user@example.com ")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "Jane Doe", user.Fullname)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should map missing rows", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := GetUserByEmail(db, "nobody@example.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("should pass through driver errors", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
			WillReturnError(errors.New("connection reset"))

		_, err := GetUserByEmail(db, "user@example.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUpdatePassword(t *testing.T) {
	t.Run("should update the hash", func(t *testing.T) {
		db, mock := newMockDB(t)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "hashed_password"=$1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, UpdatePassword(db, id, "hash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should report a vanished user", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users"`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		assert.ErrorIs(t, UpdatePassword(db, uuid.New(), "hash"), ErrUserNotFound)
	})
}

func TestGetLatestReset(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "password_resets" WHERE email = $1 ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := GetLatestReset(db, "user@example.com")
	assert.ErrorIs(t, err, ErrResetNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceReset(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "password_resets" WHERE email = $1`)).
		WithArgs("user@example.com").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "password_resets"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reset := &models.PasswordReset{
		Email:       "user@example.com",
		HashedToken: "hash",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
	require.NoError(t, ReplaceReset(db, reset))
	assert.NotEqual(t, uuid.Nil, reset.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpiredResets(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "password_resets" WHERE expires_at < $1`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	count, err := DeleteExpiredResets(db, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
