// Package mocks provides testify mock implementations of the auth use case interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// Login mocks the Login method of TokenUseCase.
func (m *MockTokenUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.Session, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

// IssueAccessToken mocks the IssueAccessToken method of TokenUseCase.
func (m *MockTokenUseCase) IssueAccessToken(identity *authDomain.Identity) (*authDomain.IssuedAccessToken, error) {
	args := m.Called(identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedAccessToken), args.Error(1)
}

// VerifyAccessToken mocks the VerifyAccessToken method of TokenUseCase.
func (m *MockTokenUseCase) VerifyAccessToken(token string) (*authDomain.AccessClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AccessClaims), args.Error(1)
}

// IssueRefreshToken mocks the IssueRefreshToken method of TokenUseCase.
func (m *MockTokenUseCase) IssueRefreshToken(
	ctx context.Context,
	identity *authDomain.Identity,
	clientMetadata authDomain.ClientMetadata,
) (*authDomain.IssuedRefreshToken, error) {
	args := m.Called(ctx, identity, clientMetadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssuedRefreshToken), args.Error(1)
}

// VerifyRefreshToken mocks the VerifyRefreshToken method of TokenUseCase.
func (m *MockTokenUseCase) VerifyRefreshToken(ctx context.Context, plainToken string) (*authDomain.RefreshToken, error) {
	args := m.Called(ctx, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RefreshToken), args.Error(1)
}

// Refresh mocks the Refresh method of TokenUseCase.
func (m *MockTokenUseCase) Refresh(
	ctx context.Context,
	plainToken string,
	clientMetadata authDomain.ClientMetadata,
) (*authDomain.Session, error) {
	args := m.Called(ctx, plainToken, clientMetadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Session), args.Error(1)
}

// RevokeRefreshToken mocks the RevokeRefreshToken method of TokenUseCase.
func (m *MockTokenUseCase) RevokeRefreshToken(ctx context.Context, plainToken string) error {
	args := m.Called(ctx, plainToken)
	return args.Error(0)
}

// RevokeAllForSubject mocks the RevokeAllForSubject method of TokenUseCase.
func (m *MockTokenUseCase) RevokeAllForSubject(ctx context.Context, subjectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(int64), args.Error(1)
}

// PurgeExpired mocks the PurgeExpired method of TokenUseCase.
func (m *MockTokenUseCase) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockGuardUseCase is a mock implementation of GuardUseCase for testing.
type MockGuardUseCase struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of GuardUseCase.
func (m *MockGuardUseCase) Authenticate(ctx context.Context, bearerToken string) (*authDomain.Identity, error) {
	args := m.Called(ctx, bearerToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Identity), args.Error(1)
}

// AuthenticateOptional mocks the AuthenticateOptional method of GuardUseCase.
func (m *MockGuardUseCase) AuthenticateOptional(ctx context.Context, bearerToken string) (authDomain.AuthResult, error) {
	args := m.Called(ctx, bearerToken)
	return args.Get(0).(authDomain.AuthResult), args.Error(1)
}

// Authorize mocks the Authorize method of GuardUseCase.
func (m *MockGuardUseCase) Authorize(
	ctx context.Context,
	identity *authDomain.Identity,
	capability authDomain.Capability,
) error {
	args := m.Called(ctx, identity, capability)
	return args.Error(0)
}

// AuthorizeOwnership mocks the AuthorizeOwnership method of GuardUseCase.
// When no return value is configured the loader is invoked and its result returned.
func (m *MockGuardUseCase) AuthorizeOwnership(
	ctx context.Context,
	identity *authDomain.Identity,
	resourceType string,
	resourceID string,
	load func(ctx context.Context) (authDomain.Owned, error),
) (authDomain.Owned, error) {
	args := m.Called(ctx, identity, resourceType, resourceID, load)
	if len(args) == 0 {
		return load(ctx)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(authDomain.Owned), args.Error(1)
}

// MockAuditLogUseCase is a mock implementation of AuditLogUseCase for testing.
type MockAuditLogUseCase struct {
	mock.Mock
}

// Record mocks the Record method of AuditLogUseCase.
func (m *MockAuditLogUseCase) Record(ctx context.Context, event *authDomain.AuditEvent) {
	m.Called(ctx, event)
}

// List mocks the List method of AuditLogUseCase.
func (m *MockAuditLogUseCase) List(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditLog), args.Error(1)
}

// VerifyBatch mocks the VerifyBatch method of AuditLogUseCase.
func (m *MockAuditLogUseCase) VerifyBatch(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) (*authDomain.AuditVerificationReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.AuditVerificationReport), args.Error(1)
}

// NewMockTokenUseCase creates a MockTokenUseCase whose expectations are asserted on cleanup.
func NewMockTokenUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenUseCase {
	m := &MockTokenUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// NewMockGuardUseCase creates a MockGuardUseCase whose expectations are asserted on cleanup.
func NewMockGuardUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGuardUseCase {
	m := &MockGuardUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// NewMockAuditLogUseCase creates a MockAuditLogUseCase whose expectations are asserted on cleanup.
func NewMockAuditLogUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuditLogUseCase {
	m := &MockAuditLogUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}
