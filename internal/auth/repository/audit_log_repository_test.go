package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

var auditLogRowColumns = []string{
	"id", "correlation_id", "subject_id", "action", "resource_type", "resource_id", "http_method", "path",
	"status_code", "ip_address", "user_agent", "metadata", "key_id", "signature", "created_at",
}

func newTestAuditLog() *authDomain.AuditLog {
	subjectID := uuid.Must(uuid.NewV7())
	status := 403
	return &authDomain.AuditLog{
		ID:            uuid.Must(uuid.NewV7()),
		CorrelationID: "req-123",
		SubjectID:     &subjectID,
		Action:        authDomain.ActionAuthorizationDenied,
		ResourceType:  "posts",
		HTTPMethod:    "PATCH",
		Path:          "/api/posts/1",
		StatusCode:    &status,
		IPAddress:     "10.0.0.1",
		UserAgent:     "curl/8.0",
		Metadata:      map[string]any{"required": "posts:update"},
		KeyID:         "v1",
		Signature:     []byte("signature"),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestPostgreSQLAuditLogRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLAuditLogRepository(db)
	auditLog := newTestAuditLog()

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(
			auditLog.ID, "req-123", auditLog.SubjectID, authDomain.ActionAuthorizationDenied, "posts",
			auditLog.ResourceID, "PATCH", "/api/posts/1", auditLog.StatusCode, "10.0.0.1", "curl/8.0",
			[]byte(`{"required":"posts:update"}`), "v1", []byte("signature"), auditLog.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), auditLog))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditLogRepository_Create_NilMetadata(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLAuditLogRepository(db)
	auditLog := newTestAuditLog()
	auditLog.Metadata = nil

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), auditLog))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLAuditLogRepository_Create_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLAuditLogRepository(db)

	mock.ExpectExec("INSERT INTO audit_logs").WillReturnError(assert.AnError)

	err := repo.Create(context.Background(), newTestAuditLog())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostgreSQLAuditLogRepository_List(t *testing.T) {
	t.Run("without filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAuditLogRepository(db)
		auditLog := newTestAuditLog()

		rows := sqlmock.NewRows(auditLogRowColumns).
			AddRow(
				auditLog.ID.String(), "req-123", auditLog.SubjectID.String(), auditLog.Action, "posts", nil,
				"PATCH", "/api/posts/1", int64(403), "10.0.0.1", "curl/8.0",
				[]byte(`{"required":"posts:update"}`), "v1", []byte("signature"), auditLog.CreatedAt,
			).
			AddRow(
				uuid.Must(uuid.NewV7()).String(), "req-456", nil, authDomain.ActionAuthenticationDenied,
				"authentication", nil, "GET", "/api/posts", nil, "", "", nil, "v1", nil, auditLog.CreatedAt,
			)
		mock.ExpectQuery(`FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT \$1 OFFSET \$2`).
			WithArgs(50, 0).
			WillReturnRows(rows)

		got, err := repo.List(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, auditLog.ID, got[0].ID)
		assert.Equal(t, *auditLog.SubjectID, *got[0].SubjectID)
		assert.Nil(t, got[0].ResourceID)
		assert.Equal(t, 403, *got[0].StatusCode)
		assert.Equal(t, "posts:update", got[0].Metadata["required"])
		assert.Equal(t, []byte("signature"), got[0].Signature)

		assert.Nil(t, got[1].SubjectID)
		assert.Nil(t, got[1].StatusCode)
		assert.Nil(t, got[1].Metadata)
		assert.False(t, got[1].IsSigned())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with filters", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAuditLogRepository(db)

		subjectID := uuid.Must(uuid.NewV7())
		action := authDomain.ActionAuthLogin
		from := time.Now().UTC().Add(-time.Hour)
		to := time.Now().UTC()

		mock.ExpectQuery(
			`FROM audit_logs WHERE subject_id = \$1 AND action = \$2 AND created_at >= \$3 AND created_at <= \$4 ` +
				`ORDER BY created_at DESC, id DESC LIMIT \$5 OFFSET \$6`,
		).
			WithArgs(subjectID, action, from, to, 10, 20).
			WillReturnRows(sqlmock.NewRows(auditLogRowColumns))

		got, err := repo.List(context.Background(), &authDomain.AuditLogFilter{
			SubjectID:     &subjectID,
			Action:        &action,
			CreatedAtFrom: &from,
			CreatedAtTo:   &to,
			Offset:        20,
			Limit:         10,
		})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAuditLogRepository(db)

		mock.ExpectQuery("FROM audit_logs").WillReturnError(assert.AnError)

		_, err := repo.List(context.Background(), nil)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestMySQLAuditLogRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAuditLogRepository(db)
	auditLog := newTestAuditLog()

	id, _ := auditLog.ID.MarshalBinary()
	subjectID, _ := auditLog.SubjectID.MarshalBinary()
	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(
			id, "req-123", subjectID, authDomain.ActionAuthorizationDenied, "posts",
			auditLog.ResourceID, "PATCH", "/api/posts/1", auditLog.StatusCode, "10.0.0.1", "curl/8.0",
			[]byte(`{"required":"posts:update"}`), "v1", []byte("signature"), auditLog.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), auditLog))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAuditLogRepository(db)
	auditLog := newTestAuditLog()
	resourceType := "posts"

	id, _ := auditLog.ID.MarshalBinary()
	subjectID, _ := auditLog.SubjectID.MarshalBinary()
	rows := sqlmock.NewRows(auditLogRowColumns).AddRow(
		id, "req-123", subjectID, auditLog.Action, "posts", "42",
		"PATCH", "/api/posts/42", int64(403), "10.0.0.1", "curl/8.0",
		nil, "v1", []byte("signature"), auditLog.CreatedAt,
	)
	mock.ExpectQuery(`FROM audit_logs WHERE resource_type = \? ORDER BY created_at DESC, id DESC LIMIT \? OFFSET \?`).
		WithArgs(resourceType, 5, 0).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), &authDomain.AuditLogFilter{ResourceType: &resourceType, Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, auditLog.ID, got[0].ID)
	assert.Equal(t, *auditLog.SubjectID, *got[0].SubjectID)
	assert.Equal(t, "42", *got[0].ResourceID)
	assert.Nil(t, got[0].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}
