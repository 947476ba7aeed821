// Package repository implements post persistence for PostgreSQL and MySQL.
package repository

import (
	"fmt"

	"github.com/google/uuid"

	authDomain "github.com/allisson/warden/internal/auth/domain"
	"github.com/allisson/warden/internal/database"
	apperrors "github.com/allisson/warden/internal/errors"
)

const postColumns = "id, title, body, status, owner_id, created_at, updated_at"

// idEncoder converts a UUID to the driver representation of an id column.
type idEncoder func(id uuid.UUID) (any, error)

func postgresID(id uuid.UUID) (any, error) { return id, nil }

func mysqlID(id uuid.UUID) (any, error) { return id.MarshalBinary() }

// applyFilter renders filter into where. Only owner_id and status are filterable; any other
// field is rejected so a scoping bug cannot silently widen a query.
func applyFilter(where *database.Where, filter authDomain.Filter, encode idEncoder) error {
	if filter.IsMatchNone() {
		where.AddRaw("1 = 0")
		return nil
	}

	for _, clause := range filter.Clauses() {
		switch clause.Field {
		case authDomain.FieldOwnerID:
			ownerID, ok := authDomain.ReferenceID(clause.Value)
			if !ok {
				where.AddRaw("1 = 0")
				continue
			}
			value, err := encode(ownerID)
			if err != nil {
				return apperrors.Wrap(err, "failed to encode owner id")
			}
			where.Add("owner_id", "=", value)
		case authDomain.FieldStatus:
			where.Add("status", "=", fmt.Sprint(clause.Value))
		default:
			return apperrors.Wrapf(apperrors.ErrInvalidInput, "posts cannot be filtered by %q", clause.Field)
		}
	}
	return nil
}

func pagination(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	return offset, limit
}
