// Package http provides gin handlers for posts.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authHTTP "github.com/allisson/warden/internal/auth/http"
	"github.com/allisson/warden/internal/httputil"
	postDomain "github.com/allisson/warden/internal/post/domain"
	"github.com/allisson/warden/internal/post/http/dto"
	"github.com/allisson/warden/internal/post/usecase"
	customValidation "github.com/allisson/warden/internal/validation"
)

// PostHandler handles post-related HTTP requests.
type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postUseCase usecase.PostUseCase, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

// Loader returns the loader used by RequireOwnership on post routes.
func (h *PostHandler) Loader() authHTTP.OwnedLoader {
	return func(ctx context.Context, resourceID string) (authDomain.Owned, error) {
		return h.postUseCase.Load(ctx, resourceID)
	}
}

func (h *PostHandler) caller(c *gin.Context) (*authDomain.Identity, bool) {
	identity, ok := authHTTP.GetIdentity(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrNoToken, h.logger)
	}
	return identity, ok
}

// ownedPost returns the post RequireOwnership placed in the request context.
func (h *PostHandler) ownedPost(c *gin.Context) (*postDomain.Post, bool) {
	resource, _ := authHTTP.GetResource(c.Request.Context())
	post, ok := resource.(*postDomain.Post)
	if !ok {
		httputil.HandleErrorGin(c, fmt.Errorf("post missing from request context"), h.logger)
	}
	return post, ok
}

// CreateHandler creates a post owned by the caller.
// POST /v1/posts - Requires posts:create. Returns 201 Created.
func (h *PostHandler) CreateHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	post, err := h.postUseCase.Create(c.Request.Context(), identity, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPostToResponse(post))
}

// GetHandler returns a post visible to the caller.
// GET /v1/posts/:id - Requires posts:read. Posts outside the caller's scope are 404.
func (h *PostHandler) GetHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleErrorGin(c, postDomain.ErrPostNotFound, h.logger)
		return
	}

	post, err := h.postUseCase.Get(c.Request.Context(), identity, postID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostToResponse(post))
}

// ListHandler lists the caller's view of posts.
// GET /v1/posts?status=published&owner_id=<uuid>&offset=0&limit=50 - Requires posts:read.
func (h *PostHandler) ListHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := &postDomain.ListPostsInput{Offset: offset, Limit: limit}

	if raw := c.Query("status"); raw != "" {
		status := postDomain.Status(raw)
		if !status.Valid() {
			httputil.HandleErrorGin(c, postDomain.ErrInvalidStatus, h.logger)
			return
		}
		input.Status = &status
	}

	if raw := c.Query("owner_id"); raw != "" {
		ownerID, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid owner_id parameter: must be a valid UUID"), h.logger)
			return
		}
		input.OwnerID = &ownerID
	}

	posts, err := h.postUseCase.List(c.Request.Context(), identity, input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostsToListResponse(posts))
}

// UpdateHandler changes a post.
// PUT /v1/posts/:id - Requires posts:update and ownership (admins bypass).
func (h *PostHandler) UpdateHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	updated, err := h.postUseCase.Update(c.Request.Context(), identity, post, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPostToResponse(updated))
}

// DeleteHandler removes a post.
// DELETE /v1/posts/:id - Requires posts:delete and ownership (admins bypass). Returns 204 No Content.
func (h *PostHandler) DeleteHandler(c *gin.Context) {
	identity, ok := h.caller(c)
	if !ok {
		return
	}
	post, ok := h.ownedPost(c)
	if !ok {
		return
	}

	if err := h.postUseCase.Delete(c.Request.Context(), identity, post); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
