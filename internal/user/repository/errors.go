// Package repository implements user persistence for PostgreSQL and MySQL.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"

	authDomain "github.com/allisson/warden/internal/auth/domain"
)

const (
	postgresUniqueViolation pq.ErrorCode = "23505"
	mysqlDuplicateEntry     uint16       = 1062
)

const userColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at"

// isUniqueViolation reports whether err is a unique constraint violation on either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == postgresUniqueViolation
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}

func pagination(filter *authDomain.UserListFilter) (offset, limit int) {
	if filter == nil {
		return 0, 50
	}
	offset, limit = filter.Offset, filter.Limit
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 50
	}
	return offset, limit
}
