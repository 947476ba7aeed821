package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/testutil"
)

var userRowColumns = []string{
	"id", "name", "email", "password_hash", "role", "is_active", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newTestUser() *authDomain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$argon2id$hash",
		Role:         authDomain.RoleEditor,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, isUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.False(t, isUniqueViolation(nil))
}

func TestPagination(t *testing.T) {
	offset, limit := pagination(nil)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 50, limit)

	offset, limit = pagination(&authDomain.UserListFilter{Offset: -3, Limit: 0})
	assert.Equal(t, 0, offset)
	assert.Equal(t, 50, limit)

	offset, limit = pagination(&authDomain.UserListFilter{Offset: 20, Limit: 10})
	assert.Equal(t, 20, offset)
	assert.Equal(t, 10, limit)
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLUserRepository(db)
	user := newTestUser()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, "editor", true, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), newTestUser())
	assert.ErrorIs(t, err, authDomain.ErrEmailAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLUserRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(user.ID).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				user.ID.String(), user.Name, user.Email, user.PasswordHash, "editor", true,
				user.CreatedAt, user.UpdatedAt,
			))

		got, err := repo.Get(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectQuery("FROM users WHERE id").WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), uuid.New())
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_GetByEmail_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLUserRepository(db)

	mock.ExpectQuery("FROM users WHERE email").WithArgs("ada@example.com").WillReturnError(assert.AnError)

	_, err := repo.GetByEmail(context.Background(), "ada@example.com")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, authDomain.ErrUserNotFound)
}

func TestPostgreSQLUserRepository_List(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
				user.ID.String(), user.Name, user.Email, user.PasswordHash, "editor", true,
				user.CreatedAt, user.UpdatedAt,
			))

		users, err := repo.List(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, user.ID, users[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("role and status", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		role := authDomain.RoleViewer
		active := false

		mock.ExpectQuery(regexp.QuoteMeta(
			"FROM users WHERE role = $1 AND is_active = $2 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4",
		)).
			WithArgs("viewer", false, 10, 20).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		users, err := repo.List(context.Background(), &authDomain.UserListFilter{
			Role:     &role,
			IsActive: &active,
			Offset:   20,
			Limit:    10,
		})
		require.NoError(t, err)
		assert.Empty(t, users)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLUserRepository_Update(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)
		user := newTestUser()

		mock.ExpectExec("UPDATE users").
			WithArgs(user.Name, user.Email, user.PasswordHash, "editor", true, user.UpdatedAt, user.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(context.Background(), newTestUser())
		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectExec("UPDATE users").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Update(context.Background(), newTestUser())
		assert.ErrorIs(t, err, authDomain.ErrEmailAlreadyExists)
	})
}

func TestMySQLUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)
	user := newTestUser()
	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("VALUES (?, ?, ?, ?, ?, ?, ?, ?)")).
		WithArgs(id, user.Name, user.Email, user.PasswordHash, "editor", true, user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectExec("INSERT INTO users").WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), newTestUser())
	assert.ErrorIs(t, err, authDomain.ErrEmailAlreadyExists)
}

func TestMySQLUserRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)
	user := newTestUser()
	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			id, user.Name, user.Email, user.PasswordHash, "editor", true, user.CreatedAt, user.UpdatedAt,
		))

	got, err := repo.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)
	user := newTestUser()
	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)
	role := authDomain.RoleEditor

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE role = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")).
		WithArgs("editor", 50, 0).
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(
			id, user.Name, user.Email, user.PasswordHash, "editor", true, user.CreatedAt, user.UpdatedAt,
		))

	users, err := repo.List(context.Background(), &authDomain.UserListFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, user.ID, users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Update_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLUserRepository(db)

	mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), newTestUser())
	assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
}

func TestPostgreSQLUserRepository_Integration(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()
	user := newTestUser()

	require.NoError(t, repo.Create(ctx, user))

	duplicate := newTestUser()
	assert.ErrorIs(t, repo.Create(ctx, duplicate), authDomain.ErrEmailAlreadyExists)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, authDomain.RoleEditor, byEmail.Role)
	assert.True(t, byEmail.IsActive)

	user.Role = authDomain.RoleViewer
	user.IsActive = false
	user.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Update(ctx, user))

	inactive := false
	users, err := repo.List(ctx, &authDomain.UserListFilter{IsActive: &inactive})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, authDomain.RoleViewer, users[0].Role)
}
