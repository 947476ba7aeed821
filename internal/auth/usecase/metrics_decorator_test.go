package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/auth/usecase"
	usecaseMocks "github.com/allisson/warden/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/warden/internal/errors"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) Observe(
	ctx context.Context,
	domain, operation, status string,
	elapsed time.Duration,
) {
	m.Called(ctx, domain, operation, status, elapsed)
}

func (m *mockBusinessMetrics) expect(ctx any, domain, operation, status string) {
	m.On("Observe", ctx, domain, operation, status, mock.AnythingOfType("time.Duration")).Return().Once()
}

func TestTokenUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockTokenUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewTokenUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()

	t.Run("Login success", func(t *testing.T) {
		input := &authDomain.LoginInput{Email: "ada@example.com", Password: "secret"}
		session := &authDomain.Session{AccessToken: authDomain.IssuedAccessToken{Token: "jwt"}}

		mockNext.On("Login", ctx, input).Return(session, nil).Once()
		mockMetrics.expect(ctx, "auth", "login", "success")

		res, err := uc.Login(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, session, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Login error", func(t *testing.T) {
		input := &authDomain.LoginInput{Email: "ada@example.com", Password: "wrong"}

		mockNext.On("Login", ctx, input).Return(nil, authDomain.ErrInvalidCredentials).Once()
		mockMetrics.expect(ctx, "auth", "login", "error")

		res, err := uc.Login(ctx, input)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		assert.Nil(t, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("VerifyAccessToken error", func(t *testing.T) {
		mockNext.On("VerifyAccessToken", "bad").Return(nil, authDomain.ErrTokenInvalid).Once()
		mockMetrics.expect(mock.Anything, "auth", "access_token_verify", "error")

		claims, err := uc.VerifyAccessToken("bad")
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
		assert.Nil(t, claims)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Refresh success", func(t *testing.T) {
		meta := authDomain.ClientMetadata{IPAddress: "10.0.0.1"}
		session := &authDomain.Session{AccessToken: authDomain.IssuedAccessToken{Token: "jwt"}}

		mockNext.On("Refresh", ctx, "refresh", meta).Return(session, nil).Once()
		mockMetrics.expect(ctx, "auth", "refresh", "success")

		res, err := uc.Refresh(ctx, "refresh", meta)
		assert.NoError(t, err)
		assert.Equal(t, session, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RevokeRefreshToken success", func(t *testing.T) {
		mockNext.On("RevokeRefreshToken", ctx, "refresh").Return(nil).Once()
		mockMetrics.expect(ctx, "auth", "logout", "success")

		assert.NoError(t, uc.RevokeRefreshToken(ctx, "refresh"))
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("RevokeAllForSubject error", func(t *testing.T) {
		subjectID := uuid.New()
		expectedErr := errors.New("store down")

		mockNext.On("RevokeAllForSubject", ctx, subjectID).Return(int64(0), expectedErr).Once()
		mockMetrics.expect(ctx, "auth", "logout_all", "error")

		count, err := uc.RevokeAllForSubject(ctx, subjectID)
		assert.Equal(t, expectedErr, err)
		assert.Zero(t, count)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("PurgeExpired success", func(t *testing.T) {
		before := time.Now()

		mockNext.On("PurgeExpired", ctx, before).Return(int64(3), nil).Once()
		mockMetrics.expect(ctx, "auth", "refresh_token_purge", "success")

		count, err := uc.PurgeExpired(ctx, before)
		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}

func TestGuardUseCaseWithMetrics(t *testing.T) {
	mockNext := &usecaseMocks.MockGuardUseCase{}
	mockMetrics := &mockBusinessMetrics{}
	uc := usecase.NewGuardUseCaseWithMetrics(mockNext, mockMetrics)

	ctx := context.Background()
	identity := &authDomain.Identity{SubjectID: uuid.New(), Role: authDomain.RoleViewer}

	t.Run("Authenticate admitted", func(t *testing.T) {
		mockNext.On("Authenticate", ctx, "jwt").Return(identity, nil).Once()
		mockMetrics.expect(ctx, "guard", "authenticate", "admitted")

		res, err := uc.Authenticate(ctx, "jwt")
		assert.NoError(t, err)
		assert.Equal(t, identity, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Authenticate denied", func(t *testing.T) {
		mockNext.On("Authenticate", ctx, "").Return(nil, authDomain.ErrNoToken).Once()
		mockMetrics.expect(ctx, "guard", "authenticate", "denied")

		_, err := uc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, authDomain.ErrNoToken)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Authenticate store failure", func(t *testing.T) {
		mockNext.On("Authenticate", ctx, "jwt").Return(nil, apperrors.ErrServiceUnavailable).Once()
		mockMetrics.expect(ctx, "guard", "authenticate", "error")

		_, err := uc.Authenticate(ctx, "jwt")
		assert.ErrorIs(t, err, apperrors.ErrServiceUnavailable)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Authorize denied", func(t *testing.T) {
		denied := authDomain.NewCapabilityDeniedError(authDomain.PostsUpdate)

		mockNext.On("Authorize", ctx, identity, authDomain.PostsUpdate).Return(denied).Once()
		mockMetrics.expect(ctx, "guard", "authorize", "denied")

		err := uc.Authorize(ctx, identity, authDomain.PostsUpdate)
		assert.Equal(t, denied, err)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("AuthorizeOwnership not found", func(t *testing.T) {
		mockNext.On("AuthorizeOwnership", ctx, identity, "post", "42", mock.Anything).
			Return(nil, apperrors.ErrNotFound).
			Once()
		mockMetrics.expect(ctx, "guard", "authorize_ownership", "error")

		_, err := uc.AuthorizeOwnership(ctx, identity, "post", "42", func(context.Context) (authDomain.Owned, error) {
			return nil, apperrors.ErrNotFound
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})
}
