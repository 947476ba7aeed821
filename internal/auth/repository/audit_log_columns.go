package repository

import (
	"encoding/json"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

const auditLogColumns = `id, correlation_id, subject_id, action, resource_type, resource_id, http_method, path,
	status_code, ip_address, user_agent, metadata, key_id, signature, created_at`

// marshalMetadata encodes metadata as JSON; nil and empty maps are stored as NULL.
func marshalMetadata(metadata map[string]any) (any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal audit log metadata")
	}
	return data, nil
}

func unmarshalMetadata(data []byte, auditLog *authDomain.AuditLog) error {
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, &auditLog.Metadata); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal audit log metadata")
	}
	return nil
}

// auditLogWhere renders the filter conditions shared by both SQL dialects.
// uuidArg converts identifiers to the driver representation.
func auditLogWhere(
	placeholder database.Placeholder,
	filter *authDomain.AuditLogFilter,
	uuidArg func(uuid.UUID) (any, error),
) (*database.Where, error) {
	where := database.NewWhere(placeholder)
	if filter == nil {
		return where, nil
	}

	if filter.SubjectID != nil {
		arg, err := uuidArg(*filter.SubjectID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal subject id")
		}
		where.Add("subject_id", "=", arg)
	}
	if filter.Action != nil {
		where.Add("action", "=", *filter.Action)
	}
	if filter.ResourceType != nil {
		where.Add("resource_type", "=", *filter.ResourceType)
	}
	if filter.ResourceID != nil {
		where.Add("resource_id", "=", *filter.ResourceID)
	}
	if filter.CreatedAtFrom != nil {
		where.Add("created_at", ">=", *filter.CreatedAtFrom)
	}
	if filter.CreatedAtTo != nil {
		where.Add("created_at", "<=", *filter.CreatedAtTo)
	}
	return where, nil
}

func pagination(filter *authDomain.AuditLogFilter) (offset, limit int) {
	if filter == nil || filter.Limit <= 0 {
		return 0, 50
	}
	return max(filter.Offset, 0), filter.Limit
}
