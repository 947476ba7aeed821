package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/warden/internal/errors"
)

type requiredCapabilityError struct{}

func (requiredCapabilityError) Error() string              { return "missing capability posts:update: forbidden" }
func (requiredCapabilityError) Unwrap() error              { return apperrors.ErrForbidden }
func (requiredCapabilityError) ErrorCode() string          { return "FORBIDDEN" }
func (requiredCapabilityError) RequiredCapability() string { return "posts:update" }

func performError(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleErrorGin(c, err, nil)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expected     ErrorResponse
	}{
		{
			name:         "not found",
			err:          apperrors.Wrap(apperrors.ErrNotFound, "post not found"),
			expectedCode: http.StatusNotFound,
			expected: ErrorResponse{
				Error:   "not_found",
				Message: "The requested resource was not found",
				Code:    "NOT_FOUND",
			},
		},
		{
			name:         "conflict keeps domain message",
			err:          apperrors.Wrap(apperrors.ErrConflict, "email already registered"),
			expectedCode: http.StatusConflict,
			expected: ErrorResponse{
				Error:   "conflict",
				Message: "email already registered",
				Code:    "CONFLICT",
			},
		},
		{
			name:         "coded unauthorized",
			err:          apperrors.WithCode(apperrors.Wrap(apperrors.ErrUnauthorized, "no token provided"), "NO_TOKEN"),
			expectedCode: http.StatusUnauthorized,
			expected: ErrorResponse{
				Error:   "unauthorized",
				Message: "no token provided",
				Code:    "NO_TOKEN",
			},
		},
		{
			name:         "bare unauthorized",
			err:          apperrors.ErrUnauthorized,
			expectedCode: http.StatusUnauthorized,
			expected: ErrorResponse{
				Error:   "unauthorized",
				Message: "Authentication is required",
				Code:    "UNAUTHORIZED",
			},
		},
		{
			name:         "missing capability",
			err:          requiredCapabilityError{},
			expectedCode: http.StatusForbidden,
			expected: ErrorResponse{
				Error:    "forbidden",
				Message:  "Insufficient permissions",
				Code:     "FORBIDDEN",
				Required: "posts:update",
			},
		},
		{
			name: "ownership",
			err: apperrors.WithCode(
				apperrors.Wrap(apperrors.ErrForbidden, "you can only modify your own resources"),
				"FORBIDDEN_OWNERSHIP",
			),
			expectedCode: http.StatusForbidden,
			expected: ErrorResponse{
				Error:   "forbidden",
				Message: "you can only modify your own resources",
				Code:    "FORBIDDEN_OWNERSHIP",
			},
		},
		{
			name:         "service unavailable",
			err:          apperrors.Wrap(apperrors.ErrServiceUnavailable, "store timeout"),
			expectedCode: http.StatusServiceUnavailable,
			expected: ErrorResponse{
				Error:   "service_unavailable",
				Message: "The service is temporarily unavailable",
				Code:    "SERVICE_UNAVAILABLE",
			},
		},
		{
			name: "store timeout joined with not found",
			err: apperrors.FromContext(apperrors.Join(
				apperrors.WithCode(apperrors.Wrap(apperrors.ErrNotFound, "user not found"), "USER_NOT_FOUND"),
				context.DeadlineExceeded,
			)),
			expectedCode: http.StatusServiceUnavailable,
			expected: ErrorResponse{
				Error:   "service_unavailable",
				Message: "The service is temporarily unavailable",
				Code:    "SERVICE_UNAVAILABLE",
			},
		},
		{
			name:         "internal error hides details",
			err:          fmt.Errorf("dial tcp: connection refused"),
			expectedCode: http.StatusInternalServerError,
			expected: ErrorResponse{
				Error:   "internal_error",
				Message: "An internal error occurred",
				Code:    "INTERNAL_ERROR",
			},
		},
		{
			name:         "internal error ignores codes",
			err:          apperrors.WithCode(errors.New("boom"), "SECRET_CODE"),
			expectedCode: http.StatusInternalServerError,
			expected: ErrorResponse{
				Error:   "internal_error",
				Message: "An internal error occurred",
				Code:    "INTERNAL_ERROR",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := performError(t, tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expected, body)
		})
	}
}

func TestHandleErrorGin_InvalidInput(t *testing.T) {
	code, body := performError(t, apperrors.Wrap(apperrors.ErrInvalidInput, "email: must be a valid email address."))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_input", body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Contains(t, body.Message, "must be a valid email address")
}

func TestHandleErrorGin_NilError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleErrorGin(c, nil, nil)

	assert.Empty(t, w.Body.String())
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("invalid JSON body"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"invalid JSON body","code":"BAD_REQUEST"}`, w.Body.String())
}
