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

// MySQLPostRepository handles post persistence for MySQL. UUIDs are stored as BINARY(16).
type MySQLPostRepository struct {
	db *sql.DB
}

// NewMySQLPostRepository creates a new MySQLPostRepository.
func NewMySQLPostRepository(db *sql.DB) *MySQLPostRepository {
	return &MySQLPostRepository{db: db}
}

// Create inserts a new post.
func (r *MySQLPostRepository) Create(ctx context.Context, post *postDomain.Post) error {
	querier := database.GetTx(ctx, r.db)

	id, err := post.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	ownerID, err := post.OwnerID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal owner UUID")
	}

	query := `INSERT INTO posts (` + postColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = querier.ExecContext(ctx, query,
		id, post.Title, post.Body, string(post.Status), ownerID, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create post")
	}
	return nil
}

// Get retrieves a post by ID.
func (r *MySQLPostRepository) Get(ctx context.Context, postID uuid.UUID) (*postDomain.Post, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`
	post, err := scanMySQLPost(querier.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, postDomain.ErrPostNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get post")
	}
	return post, nil
}

// List returns the posts matching filter, newest first.
func (r *MySQLPostRepository) List(
	ctx context.Context,
	filter authDomain.Filter,
	offset, limit int,
) ([]*postDomain.Post, error) {
	querier := database.GetTx(ctx, r.db)

	where := database.NewWhere(database.Question)
	if err := applyFilter(where, filter, mysqlID); err != nil {
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
		post, err := scanMySQLPost(rows.Scan)
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
func (r *MySQLPostRepository) Update(ctx context.Context, post *postDomain.Post) error {
	querier := database.GetTx(ctx, r.db)

	id, err := post.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	// MySQL reports rows changed, not rows matched, so an identical update would look like a
	// missing row; updated_at always moves forward which keeps the count at one.
	query := `UPDATE posts SET title = ?, body = ?, status = ?, updated_at = ? WHERE id = ?`
	result, err := querier.ExecContext(ctx, query, post.Title, post.Body, string(post.Status), post.UpdatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update post")
	}
	return checkAffected(result, "failed to update post")
}

// Delete removes a post.
func (r *MySQLPostRepository) Delete(ctx context.Context, postID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	id, err := postID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete post")
	}
	return checkAffected(result, "failed to delete post")
}

func scanMySQLPost(scan func(dest ...any) error) (*postDomain.Post, error) {
	var post postDomain.Post
	var id, ownerID []byte
	var status string
	if err := scan(&id, &post.Title, &post.Body, &status, &ownerID, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return nil, err
	}
	if err := post.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal post id")
	}
	if err := post.OwnerID.UnmarshalBinary(ownerID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal owner id")
	}
	post.Status = postDomain.Status(status)
	return &post, nil
}
