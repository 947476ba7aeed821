// Package domain defines the post resource: the content type whose access is governed by
// capabilities, ownership and visibility scoping.
package domain

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	apperrors "github.com/allisson/warden/internal/errors"
)

// ResourceType names posts in capabilities, scoping and audit records.
const ResourceType = "posts"

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

var (
	// ErrPostNotFound is returned for missing posts and for posts outside the caller's scope.
	ErrPostNotFound = apperrors.Wrap(apperrors.ErrNotFound, "post not found")

	// ErrInvalidStatus indicates an unknown publication status.
	ErrInvalidStatus = apperrors.Wrap(apperrors.ErrInvalidInput, "status must be draft or published")
)

// Post is a piece of content owned by one user.
type Post struct {
	ID        uuid.UUID
	Title     string
	Body      string
	Status    Status
	OwnerID   uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner implements authDomain.Owned.
func (p *Post) Owner() any {
	return p.OwnerID
}

// Fields exposes the filterable fields used by scope checks.
func (p *Post) Fields() map[string]any {
	return map[string]any{
		authDomain.FieldOwnerID: p.OwnerID,
		authDomain.FieldStatus:  string(p.Status),
	}
}

// CreatePostInput contains the parameters for creating a post. An empty status means draft.
type CreatePostInput struct {
	Title  string
	Body   string
	Status Status
}

// UpdatePostInput contains the fields to change. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title  *string
	Body   *string
	Status *Status
}

// ListPostsInput contains the caller supplied filters for listing posts.
type ListPostsInput struct {
	Status  *Status
	OwnerID *uuid.UUID
	Offset  int
	Limit   int
}

// Filter converts the caller supplied filters into the base filter handed to the scoper.
func (in *ListPostsInput) Filter() authDomain.Filter {
	filter := authDomain.NewFilter()
	if in == nil {
		return filter
	}
	if in.Status != nil {
		filter = filter.And(authDomain.Eq(authDomain.FieldStatus, string(*in.Status)))
	}
	if in.OwnerID != nil {
		filter = filter.And(authDomain.Eq(authDomain.FieldOwnerID, *in.OwnerID))
	}
	return filter
}
