package dto

import (
	"time"

	postDomain "github.com/allisson/warden/internal/post/domain"
)

// PostResponse represents a post in API responses.
type PostResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListPostsResponse represents a page of posts.
type ListPostsResponse struct {
	Data []PostResponse `json:"data"`
}

// MapPostToResponse converts a domain post to an API response.
func MapPostToResponse(post *postDomain.Post) PostResponse {
	return PostResponse{
		ID:        post.ID.String(),
		Title:     post.Title,
		Body:      post.Body,
		Status:    string(post.Status),
		OwnerID:   post.OwnerID.String(),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

// MapPostsToListResponse converts domain posts to a list API response.
func MapPostsToListResponse(posts []*postDomain.Post) ListPostsResponse {
	data := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		data = append(data, MapPostToResponse(post))
	}
	return ListPostsResponse{Data: data}
}
