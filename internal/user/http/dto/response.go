package dto

import (
	authDomain "github.com/allisson/warden/internal/auth/domain"
	authDto "github.com/allisson/warden/internal/auth/http/dto"
)

// ListUsersResponse represents a paginated list of users in API responses.
type ListUsersResponse struct {
	Data []authDto.UserResponse `json:"data"`
}

// MapUsersToListResponse converts a slice of domain users to a list API response.
func MapUsersToListResponse(users []*authDomain.User) ListUsersResponse {
	data := make([]authDto.UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, authDto.MapUserToResponse(user))
	}
	return ListUsersResponse{Data: data}
}
