package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
	postDomain "github.com/allisson/warden/internal/post/domain"
)

// PostgreSQLPostRepository handles post persistence for PostgreSQL.
type PostgreSQLPostRepository struct {
	db *sql.DB
}

// NewPostgreSQLPostRepository creates a new PostgreSQLPostRepository.
func NewPostgreSQLPostRepository(db *sql.DB) *PostgreSQLPostRepository {
	return &PostgreSQLPostRepository{db: db}
}

// Create inserts a new post.
func (r *PostgreSQLPostRepository) Create(ctx context.Context, post *postDomain.Post) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO posts (` + postColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := querier.ExecContext(ctx, query,
		post.ID, post.Title, post.Body, string(post.Status), post.OwnerID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create post")
	}
	return nil
}

// Get retrieves a post by ID.
func (r *PostgreSQLPostRepository) Get(ctx context.Context, postID uuid.UUID) (*postDomain.Post, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPostgreSQLPost(querier.QueryRowContext(ctx, query, postID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, postDomain.ErrPostNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get post")
	}
	return post, nil
}

// List returns the posts matching filter, newest first.
func (r *PostgreSQLPostRepository) List(
	ctx context.Context,
	filter authDomain.Filter,
	offset, limit int,
) ([]*postDomain.Post, error) {
	querier := database.GetTx(ctx, r.db)

	where := database.NewWhere(database.Dollar)
	if err := applyFilter(where, filter, postgresID); err != nil {
		return nil, err
	}
	offset, limit = pagination(offset, limit)

	query := fmt.Sprintf("SELECT %s FROM posts%s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s",
		postColumns, where.SQL(), where.Bind(limit), where.Bind(offset))

	rows, err := querier.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list posts")
	}
	defer func() {
		_ = rows.Close()
	}()

	posts := make([]*postDomain.Post, 0)
	for rows.Next() {
		post, err := scanPostgreSQLPost(rows.Scan)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan post")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate posts")
	}
	return posts, nil
}

// Update stores the post's title, body, status and updated_at.
func (r *PostgreSQLPostRepository) Update(ctx context.Context, post *postDomain.Post) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE posts SET title = $1, body = $2, status = $3, updated_at = $4 WHERE id = $5`
	result, err := querier.ExecContext(ctx, query, post.Title, post.Body, string(post.Status), post.UpdatedAt, post.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update post")
	}
	return checkAffected(result, "failed to update post")
}

// Delete removes a post.
func (r *PostgreSQLPostRepository) Delete(ctx context.Context, postID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete post")
	}
	return checkAffected(result, "failed to delete post")
}

func checkAffected(result sql.Result, message string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, message)
	}
	if affected == 0 {
		return postDomain.ErrPostNotFound
	}
	return nil
}

func scanPostgreSQLPost(scan func(dest ...any) error) (*postDomain.Post, error) {
	var post postDomain.Post
	var status string
	if err := scan(&post.ID, &post.Title, &post.Body, &status, &post.OwnerID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	post.Status = postDomain.Status(status)
	return &post, nil
}
