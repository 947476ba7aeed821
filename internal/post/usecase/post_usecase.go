package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authService "github.com/allisson/warden/internal/auth/service"
	"github.com/allisson/warden/internal/database"
	postDomain "github.com/allisson/warden/internal/post/domain"
	appValidation "github.com/allisson/warden/internal/validation"
)

var (
	titleRules = []validation.Rule{
		validation.Required.Error("title is required"),
		appValidation.NotBlank,
		validation.Length(1, 200).Error("title must be at most 200 characters"),
	}
	bodyRules = []validation.Rule{
		validation.Required.Error("body is required"),
		validation.Length(1, 20000).Error("body must be at most 20000 characters"),
	}
	statusRule = validation.By(func(value any) error {
		status, _ := value.(postDomain.Status)
		if status.Valid() {
			return nil
		}
		return validation.NewError("validation_status", "status must be draft or published")
	})
)

type postUseCase struct {
	postRepo     PostRepository
	scoper       authService.OwnershipScoper
	audit        AuditRecorder
	storeTimeout time.Duration
	now          func() time.Time
}

func (u *postUseCase) store(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

func (u *postUseCase) record(
	ctx context.Context,
	action string,
	caller *authDomain.Identity,
	post *postDomain.Post,
	status int,
	metadata map[string]any,
) {
	resourceID := post.ID.String()
	event := &authDomain.AuditEvent{
		Action:       action,
		ResourceType: postDomain.ResourceType,
		ResourceID:   &resourceID,
		StatusCode:   &status,
		Metadata:     metadata,
	}
	if caller != nil {
		event.SubjectID = &caller.SubjectID
	}
	u.audit.Record(ctx, event)
}

func (u *postUseCase) Create(
	ctx context.Context,
	caller *authDomain.Identity,
	input *postDomain.CreatePostInput,
) (*postDomain.Post, error) {
	if caller == nil {
		return nil, authDomain.ErrNoToken
	}

	in := *input
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = postDomain.StatusDraft
	}

	err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, titleRules...),
		validation.Field(&in.Body, bodyRules...),
		validation.Field(&in.Status, statusRule),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	post := &postDomain.Post{
		ID:        uuid.Must(uuid.NewV7()),
		Title:     in.Title,
		Body:      in.Body,
		Status:    in.Status,
		OwnerID:   caller.SubjectID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := u.store(ctx, func(ctx context.Context) error {
		return u.postRepo.Create(ctx, post)
	}); err != nil {
		return nil, err
	}

	u.record(ctx, authDomain.ActionPostCreate, caller, post, http.StatusCreated, map[string]any{
		"status": string(post.Status),
	})
	return post, nil
}

func (u *postUseCase) Get(
	ctx context.Context,
	caller *authDomain.Identity,
	postID uuid.UUID,
) (*postDomain.Post, error) {
	post, err := database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) (*postDomain.Post, error) {
		return u.postRepo.Get(ctx, postID)
	})
	if err != nil {
		return nil, err
	}

	scope := u.scoper.ScopeFor(caller, authDomain.NewFilter(), postDomain.ResourceType)
	if !scope.Matches(post.Fields()) {
		return nil, postDomain.ErrPostNotFound
	}
	return post, nil
}

func (u *postUseCase) List(
	ctx context.Context,
	caller *authDomain.Identity,
	input *postDomain.ListPostsInput,
) ([]*postDomain.Post, error) {
	scope := u.scoper.ScopeFor(caller, input.Filter(), postDomain.ResourceType)
	if scope.IsMatchNone() {
		return []*postDomain.Post{}, nil
	}

	var offset, limit int
	if input != nil {
		offset, limit = input.Offset, input.Limit
	}
	return database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) ([]*postDomain.Post, error) {
		return u.postRepo.List(ctx, scope, offset, limit)
	})
}

func (u *postUseCase) Load(ctx context.Context, resourceID string) (authDomain.Owned, error) {
	postID, err := uuid.Parse(resourceID)
	if err != nil {
		return nil, postDomain.ErrPostNotFound
	}
	post, err := database.WithStore(ctx, u.storeTimeout, func(ctx context.Context) (*postDomain.Post, error) {
		return u.postRepo.Get(ctx, postID)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (u *postUseCase) Update(
	ctx context.Context,
	caller *authDomain.Identity,
	post *postDomain.Post,
	input *postDomain.UpdatePostInput,
) (*postDomain.Post, error) {
	updated := *post
	fields := make([]string, 0, 3)
	if input.Title != nil {
		updated.Title = strings.TrimSpace(*input.Title)
		fields = append(fields, "title")
	}
	if input.Body != nil {
		updated.Body = *input.Body
		fields = append(fields, "body")
	}
	if input.Status != nil {
		updated.Status = *input.Status
		fields = append(fields, "status")
	}

	err := validation.Errors{
		"title":  validation.Validate(updated.Title, titleRules...),
		"body":   validation.Validate(updated.Body, bodyRules...),
		"status": validation.Validate(updated.Status, statusRule),
	}.Filter()
	if err := appValidation.WrapValidationError(err); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return post, nil
	}

	updated.UpdatedAt = u.now().UTC()
	if err := u.store(ctx, func(ctx context.Context) error {
		return u.postRepo.Update(ctx, &updated)
	}); err != nil {
		return nil, err
	}

	u.record(ctx, authDomain.ActionPostUpdate, caller, &updated, http.StatusOK, map[string]any{
		"fields":  fields,
		"ownerId": post.OwnerID.String(),
	})
	return &updated, nil
}

func (u *postUseCase) Delete(ctx context.Context, caller *authDomain.Identity, post *postDomain.Post) error {
	if err := u.store(ctx, func(ctx context.Context) error {
		return u.postRepo.Delete(ctx, post.ID)
	}); err != nil {
		return err
	}

	u.record(ctx, authDomain.ActionPostDelete, caller, post, http.StatusNoContent, map[string]any{
		"ownerId": post.OwnerID.String(),
	})
	return nil
}

// NewPostUseCase creates a PostUseCase.
func NewPostUseCase(
	postRepo PostRepository,
	scoper authService.OwnershipScoper,
	audit AuditRecorder,
	storeTimeout time.Duration,
) PostUseCase {
	return &postUseCase{
		postRepo:     postRepo,
		scoper:       scoper,
		audit:        audit,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}
