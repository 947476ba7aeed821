package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	postDomain "github.com/allisson/warden/internal/post/domain"
	"github.com/allisson/warden/internal/testutil"
)

var postRowColumns = []string{"id", "title", "body", "status", "owner_id", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func newTestPost() *postDomain.Post {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &postDomain.Post{
		ID:        uuid.Must(uuid.NewV7()),
		Title:     "Hello",
		Body:      "World",
		Status:    postDomain.StatusDraft,
		OwnerID:   uuid.Must(uuid.NewV7()),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestApplyFilter(t *testing.T) {
	owner := uuid.Must(uuid.NewV7())

	t.Run("owner and status", func(t *testing.T) {
		where := database.NewWhere(database.Dollar)
		filter := authDomain.NewFilter(
			authDomain.Eq(authDomain.FieldOwnerID, owner),
			authDomain.Eq(authDomain.FieldStatus, "published"),
		)
		require.NoError(t, applyFilter(where, filter, postgresID))
		assert.Equal(t, " WHERE owner_id = $1 AND status = $2", where.SQL())
		assert.Equal(t, []any{owner, "published"}, where.Args())
	})

	t.Run("match none", func(t *testing.T) {
		where := database.NewWhere(database.Question)
		require.NoError(t, applyFilter(where, authDomain.MatchNone(), mysqlID))
		assert.Equal(t, " WHERE 1 = 0", where.SQL())
		assert.Empty(t, where.Args())
	})

	t.Run("binary owner for mysql", func(t *testing.T) {
		where := database.NewWhere(database.Question)
		filter := authDomain.NewFilter(authDomain.Eq(authDomain.FieldOwnerID, owner.String()))
		require.NoError(t, applyFilter(where, filter, mysqlID))
		expected, _ := owner.MarshalBinary()
		assert.Equal(t, []any{expected}, where.Args())
	})

	t.Run("unparseable owner matches nothing", func(t *testing.T) {
		where := database.NewWhere(database.Dollar)
		filter := authDomain.NewFilter(authDomain.Eq(authDomain.FieldOwnerID, "not-a-uuid"))
		require.NoError(t, applyFilter(where, filter, postgresID))
		assert.Equal(t, " WHERE 1 = 0", where.SQL())
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		where := database.NewWhere(database.Dollar)
		err := applyFilter(where, authDomain.NewFilter(authDomain.Eq("title", "x")), postgresID)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestPostgreSQLPostRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMock(t)
		post := newTestPost()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO posts`)).
			WithArgs(post.ID, post.Title, post.Body, "draft", post.OwnerID, post.CreatedAt, post.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, NewPostgreSQLPostRepository(db).Create(ctx, post))
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMock(t)
		post := newTestPost()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = $1`)).
			WithArgs(post.ID).
			WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(
				post.ID.String(), post.Title, post.Body, "draft", post.OwnerID.String(), post.CreatedAt, post.UpdatedAt))

		got, err := NewPostgreSQLPostRepository(db).Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, got)
	})

	t.Run("Get not found", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = $1`)).WillReturnError(sql.ErrNoRows)

		_, err := NewPostgreSQLPostRepository(db).Get(ctx, uuid.New())
		assert.ErrorIs(t, err, postDomain.ErrPostNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("List scoped to owner", func(t *testing.T) {
		db, mock := newMock(t)
		post := newTestPost()
		filter := authDomain.NewFilter(authDomain.Eq(authDomain.FieldOwnerID, post.OwnerID))

		mock.ExpectQuery(regexp.QuoteMeta(
			`SELECT ` + postColumns + ` FROM posts WHERE owner_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`)).
			WithArgs(post.OwnerID, 10, 0).
			WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(
				post.ID.String(), post.Title, post.Body, "draft", post.OwnerID.String(), post.CreatedAt, post.UpdatedAt))

		posts, err := NewPostgreSQLPostRepository(db).List(ctx, filter, 0, 10)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, post.ID, posts[0].ID)
	})

	t.Run("List match none", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE 1 = 0 ORDER BY`)).
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(postRowColumns))

		posts, err := NewPostgreSQLPostRepository(db).List(ctx, authDomain.MatchNone(), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("Update missing", func(t *testing.T) {
		db, mock := newMock(t)
		post := newTestPost()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE posts SET`)).
			WithArgs(post.Title, post.Body, "draft", post.UpdatedAt, post.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLPostRepository(db).Update(ctx, post)
		assert.ErrorIs(t, err, postDomain.ErrPostNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		db, mock := newMock(t)
		id := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewPostgreSQLPostRepository(db).Delete(ctx, id))
	})
}

func TestMySQLPostRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		db, mock := newMock(t)
		post := newTestPost()
		id, _ := post.ID.MarshalBinary()
		owner, _ := post.OwnerID.MarshalBinary()
		mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE id = ?`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(postRowColumns).AddRow(
				id, post.Title, post.Body, "draft", owner, post.CreatedAt, post.UpdatedAt))

		got, err := NewMySQLPostRepository(db).Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, got)
	})

	t.Run("List by status", func(t *testing.T) {
		db, mock := newMock(t)
		filter := authDomain.NewFilter(authDomain.Eq(authDomain.FieldStatus, "published"))
		mock.ExpectQuery(regexp.QuoteMeta(`FROM posts WHERE status = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)).
			WithArgs("published", 5, 10).
			WillReturnRows(sqlmock.NewRows(postRowColumns))

		posts, err := NewMySQLPostRepository(db).List(ctx, filter, 10, 5)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("Delete missing", func(t *testing.T) {
		db, mock := newMock(t)
		id := uuid.New()
		binaryID, _ := id.MarshalBinary()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM posts WHERE id = ?`)).
			WithArgs(binaryID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewMySQLPostRepository(db).Delete(ctx, id)
		assert.ErrorIs(t, err, postDomain.ErrPostNotFound)
	})
}

func TestPostgreSQLPostRepository_Integration(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	ctx := context.Background()
	repo := NewPostgreSQLPostRepository(db)

	editor := testutil.CreateTestUser(t, db, "postgres", "editor")
	other := testutil.CreateTestUser(t, db, "postgres", "editor")
	testutil.CreateTestPost(t, db, "postgres", editor, "draft")
	testutil.CreateTestPost(t, db, "postgres", editor, "published")
	testutil.CreateTestPost(t, db, "postgres", other, "published")

	own, err := repo.List(ctx, authDomain.NewFilter(authDomain.Eq(authDomain.FieldOwnerID, editor)), 0, 50)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	published, err := repo.List(ctx, authDomain.NewFilter(authDomain.Eq(authDomain.FieldStatus, "published")), 0, 50)
	require.NoError(t, err)
	assert.Len(t, published, 2)

	none, err := repo.List(ctx, authDomain.MatchNone(), 0, 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}
