package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	authService "github.com/allisson/warden/internal/auth/service"
)

// mockUserRepository is a mock implementation of UserRepository for testing.
type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

// mockRefreshTokenRepository is a mock implementation of RefreshTokenRepository for testing.
type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *authDomain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) GetActiveByTokenHash(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*authDomain.RefreshToken, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	args := m.Called(ctx, tokenHash, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockRefreshTokenRepository) RevokeAllForSubject(
	ctx context.Context,
	subjectID uuid.UUID,
	now time.Time,
) (int64, error) {
	args := m.Called(ctx, subjectID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// mockAuditLogRepository is a mock implementation of AuditLogRepository for testing.
type mockAuditLogRepository struct {
	mock.Mock
}

func (m *mockAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *mockAuditLogRepository) List(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditLog), args.Error(1)
}

// memoryAuditLogRepository keeps audit logs in memory, newest last.
type memoryAuditLogRepository struct {
	mu   sync.Mutex
	logs []*authDomain.AuditLog
}

func (m *memoryAuditLogRepository) Create(_ context.Context, auditLog *authDomain.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, auditLog)
	return nil
}

func (m *memoryAuditLogRepository) List(
	_ context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*authDomain.AuditLog, 0)
	for i := len(m.logs) - 1; i >= 0; i-- {
		if filter != nil && filter.Action != nil && m.logs[i].Action != *filter.Action {
			continue
		}
		if filter != nil && filter.CreatedAtTo != nil && m.logs[i].CreatedAt.After(*filter.CreatedAtTo) {
			continue
		}
		out = append(out, m.logs[i])
	}

	if filter == nil || filter.Limit <= 0 {
		return out, nil
	}
	start := min(filter.Offset, len(out))
	end := min(start+filter.Limit, len(out))
	return out[start:end], nil
}

// growingAuditLogRepository appends a fresh log before answering every List call.
type growingAuditLogRepository struct {
	*memoryAuditLogRepository
}

func (g growingAuditLogRepository) List(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	err := g.Create(ctx, &authDomain.AuditLog{
		ID:        uuid.Must(uuid.NewV7()),
		Action:    authDomain.ActionAuthLogin,
		CreatedAt: time.Now().UTC().Add(time.Minute),
	})
	if err != nil {
		return nil, err
	}
	return g.memoryAuditLogRepository.List(ctx, filter)
}

func (m *memoryAuditLogRepository) byAction(action string) []*authDomain.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*authDomain.AuditLog, 0)
	for _, l := range m.logs {
		if l.Action == action {
			out = append(out, l)
		}
	}
	return out
}

// mockPasswordService compares passwords against "hash:<password>".
type mockPasswordService struct{}

func (mockPasswordService) HashPassword(plainPassword string) (string, error) {
	return "hash:" + plainPassword, nil
}

func (mockPasswordService) ComparePassword(plainPassword string, hashedPassword string) bool {
	return hashedPassword == "hash:"+plainPassword
}

// recordingPasswordService remembers every hash a password was compared against.
type recordingPasswordService struct {
	mockPasswordService
	compared []string
}

func (r *recordingPasswordService) ComparePassword(plainPassword string, hashedPassword string) bool {
	r.compared = append(r.compared, hashedPassword)
	return r.mockPasswordService.ComparePassword(plainPassword, hashedPassword)
}

// mockTokenService is a mock implementation of TokenService for testing.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) HashToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

// fakeTxManager runs fn inline.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// fixedClock returns a settable clock.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUser(role authDomain.Role) *authDomain.User {
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())
	return &authDomain.User{
		ID:           id,
		Name:         "Test " + string(role),
		Email:        id.String() + "@example.com",
		PasswordHash: "hash:secret-password",
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func newTestAccessTokenService(t *testing.T, clock *fixedClock) authService.AccessTokenService {
	t.Helper()
	svc, err := authService.NewAccessTokenService(authService.AccessTokenConfig{
		Secret:   []byte("test-jwt-secret-with-enough-entropy"),
		Issuer:   "rbac-api",
		Audience: "rbac-client",
		TTL:      15 * time.Minute,
		Now:      clock.Now,
	})
	require.NoError(t, err)
	return svc
}

func newTestAuditLogUseCase(repo AuditLogRepository) *auditLogUseCase {
	uc := NewAuditLogUseCase(
		repo,
		authService.NewAuditSigner(),
		AuditLogConfig{SigningKey: []byte("audit-root-key"), KeyID: "v1", StoreTimeout: time.Second},
		discardLogger(),
	)
	return uc.(*auditLogUseCase)
}
