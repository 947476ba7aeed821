// Package usecase implements post operations on top of the authorization core: capability
// checks happen in middleware, ownership through the guard and listing through the scoper.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	postDomain "github.com/allisson/warden/internal/post/domain"
)

// PostRepository persists posts. Missing posts yield ErrPostNotFound.
type PostRepository interface {
	Create(ctx context.Context, post *postDomain.Post) error
	Get(ctx context.Context, postID uuid.UUID) (*postDomain.Post, error)
	List(ctx context.Context, filter authDomain.Filter, offset, limit int) ([]*postDomain.Post, error)
	Update(ctx context.Context, post *postDomain.Post) error
	Delete(ctx context.Context, postID uuid.UUID) error
}

// AuditRecorder appends audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, event *authDomain.AuditEvent)
}

// PostUseCase manages posts.
type PostUseCase interface {
	// Create stores a post owned by the caller.
	Create(ctx context.Context, caller *authDomain.Identity, input *postDomain.CreatePostInput) (*postDomain.Post, error)

	// Get returns the post when it falls inside the caller's scope. Posts outside it are
	// reported as not found.
	Get(ctx context.Context, caller *authDomain.Identity, postID uuid.UUID) (*postDomain.Post, error)

	// List returns the caller's scoped view of posts.
	List(ctx context.Context, caller *authDomain.Identity, input *postDomain.ListPostsInput) ([]*postDomain.Post, error)

	// Load fetches a post for ownership checks. resourceID that is not a UUID is not found.
	Load(ctx context.Context, resourceID string) (authDomain.Owned, error)

	// Update applies input to a post whose ownership was already established.
	Update(
		ctx context.Context,
		caller *authDomain.Identity,
		post *postDomain.Post,
		input *postDomain.UpdatePostInput,
	) (*postDomain.Post, error)

	// Delete removes a post whose ownership was already established.
	Delete(ctx context.Context, caller *authDomain.Identity, post *postDomain.Post) error
}
