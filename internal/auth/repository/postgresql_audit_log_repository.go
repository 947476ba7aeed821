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

// PostgreSQLAuditLogRepository implements audit log persistence for PostgreSQL.
// Rows are only ever inserted; there is no update or delete path.
type PostgreSQLAuditLogRepository struct {
	db *sql.DB
}

// Create inserts a new audit log entry.
func (p *PostgreSQLAuditLogRepository) Create(ctx context.Context, auditLog *authDomain.AuditLog) error {
	querier := database.GetTx(ctx, p.db)

	metadata, err := marshalMetadata(auditLog.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO audit_logs (` + auditLogColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = querier.ExecContext(
		ctx,
		query,
		auditLog.ID,
		auditLog.CorrelationID,
		auditLog.SubjectID,
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
func (p *PostgreSQLAuditLogRepository) List(
	ctx context.Context,
	filter *authDomain.AuditLogFilter,
) ([]*authDomain.AuditLog, error) {
	querier := database.GetTx(ctx, p.db)

	where, err := auditLogWhere(database.Dollar, filter, func(id uuid.UUID) (any, error) {
		return id, nil
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
		var metadata []byte
		var subjectID uuid.NullUUID
		var statusCode sql.NullInt64
		var resourceID sql.NullString

		err := rows.Scan(
			&auditLog.ID,
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

		if subjectID.Valid {
			auditLog.SubjectID = &subjectID.UUID
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

// NewPostgreSQLAuditLogRepository creates a new PostgreSQL audit log repository.
func NewPostgreSQLAuditLogRepository(db *sql.DB) *PostgreSQLAuditLogRepository {
	return &PostgreSQLAuditLogRepository{db: db}
}
