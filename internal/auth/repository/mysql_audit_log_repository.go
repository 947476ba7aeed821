package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

// MySQLAuditLogRepository implements audit log persistence for MySQL.
// UUIDs are stored as BINARY(16) and metadata as JSON.
type MySQLAuditLogRepository struct {
	db *sql.DB
}

func marshalNullableUUID(id *uuid.UUID) (any, error) {
	if id == nil {
		return nil, nil
	}
	return id.MarshalBinary()
}

// Create inserts a new audit log entry.
func (m *MySQLAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	querier := database.GetTx(ctx, m.db)

	id, err := auditLog.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log id")
	}
	subjectID, err := marshalNullableUUID(auditLog.SubjectID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit log subject_id")
	}
	metadata, err := marshalMetadata(auditLog.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		auditLog.CorrelationID,
		subjectID,
		auditLog.Action,
		auditLog.ResourceType,
		auditLog.ResourceID,
		auditLog.HTTPMethod,
		auditLog.Path,
		auditLog.StatusCode,
		auditLog.IPAddress,
		auditLog.UserAgent,
		metadata,
		auditLog.KeyID,
		auditLog.Signature,
		auditLog.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit log")
	}
	return nil
}

// List returns audit logs matching the filter, newest first.
func (m *MySQLAuditLogRepository) List(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, m.db)

	where, err := auditLogWhere(database.Question, filter, func(id uuid.UUID) (any, error) {
		return id.MarshalBinary()
	})
	if err != nil {
		return nil, err
	}

	offset, limit := pagination(filter)
	query := fmt.Sprintf(
		"SELECT %s FROM audit_logs%s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s",
		auditLogColumns,
		where.SQL(),
		where.Bind(limit),
		where.Bind(offset),
	)

	rows, err := querier.QueryContext(ctx, query, where.Args()...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit logs")
	}
	defer func() {
		_ = rows.Close()
	}()

	auditLogs := make([]*authDomain.AuditLog, 0)
	for rows.Next() {
		var auditLog authDomain.AuditLog
		var id, subjectID, metadata []byte
		var statusCode sql.NullInt64
		var resourceID sql.NullString

		err := rows.Scan(
			&id,
			&auditLog.CorrelationID,
			&subjectID,
			&auditLog.Action,
			&auditLog.ResourceType,
			&resourceID,
			&auditLog.HTTPMethod,
			&auditLog.Path,
			&statusCode,
			&auditLog.IPAddress,
			&auditLog.UserAgent,
			&metadata,
			&auditLog.KeyID,
			&auditLog.Signature,
			&auditLog.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit log")
		}

		if err := auditLog.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit log id")
		}
		if subjectID != nil {
			var sid uuid.UUID
			if err := sid.UnmarshalBinary(subjectID); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit log subject_id")
			}
			auditLog.SubjectID = &sid
		}
		if resourceID.Valid {
			auditLog.ResourceID = &resourceID.String
		}
		if statusCode.Valid {
			code := int(statusCode.Int64)
			auditLog.StatusCode = &code
		}
		if err := unmarshalMetadata(metadata, &auditLog); err != nil {
			return nil, err
		}

		auditLogs = append(auditLogs, &auditLog)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit logs")
	}

	return auditLogs, nil
}

// NewMySQLAuditLogRepository creates a new MySQL audit log repository.
func NewMySQLAuditLogRepository(db *sql.DB) *MySQLAuditLogRepository {
	return &MySQLAuditLogRepository{db: db}
}
