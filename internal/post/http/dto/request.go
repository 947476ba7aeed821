// Package dto provides data transfer objects for post HTTP handlers.
package dto

import (
	validation "github.com/jellydator/validation"

	postDomain "github.com/allisson/warden/internal/post/domain"
	customValidation "github.com/allisson/warden/internal/validation"
)

var statusRule = validation.In(string(postDomain.StatusDraft), string(postDomain.StatusPublished)).
	Error("must be draft or published")

// CreatePostRequest contains the parameters for creating a post.
type CreatePostRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Status string `json:"status,omitempty"`
}

// Validate checks the request shape.
func (r *CreatePostRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, customValidation.NotBlank, validation.Length(1, 200)),
		validation.Field(&r.Body, validation.Required),
		validation.Field(&r.Status, statusRule),
	)
}

// ToDomain converts the request to a use case input.
func (r *CreatePostRequest) ToDomain() *postDomain.CreatePostInput {
	return &postDomain.CreatePostInput{
		Title:  r.Title,
		Body:   r.Body,
		Status: postDomain.Status(r.Status),
	}
}

// UpdatePostRequest contains the fields to change. Omitted fields are unchanged.
type UpdatePostRequest struct {
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Status *string `json:"status"`
}

// Validate requires at least one field.
func (r *UpdatePostRequest) Validate() error {
	if r.Title == nil && r.Body == nil && r.Status == nil {
		return validation.NewError("validation_empty", "at least one of title, body or status is required")
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Body, validation.NilOrNotEmpty),
		validation.Field(&r.Status, statusRule),
	)
}

// ToDomain converts the request to a use case input.
func (r *UpdatePostRequest) ToDomain() *postDomain.UpdatePostInput {
	input := &postDomain.UpdatePostInput{Title: r.Title, Body: r.Body}
	if r.Status != nil {
		status := postDomain.Status(*r.Status)
		input.Status = &status
	}
	return input
}
