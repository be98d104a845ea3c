package persistence

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// uniqueViolation is the Postgres error code for unique constraint violations
const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation,
// either as reported by the Postgres driver or normalized by GORM
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
