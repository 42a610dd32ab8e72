package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SQLSTATE classes the repositories care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// sqlite reports constraint failures only as text.
var sqliteMarkers = map[string]string{
	pgUniqueViolation:     "UNIQUE constraint failed",
	pgForeignKeyViolation: "FOREIGN KEY constraint failed",
	pgCheckViolation:      "CHECK constraint failed",
}

func violates(err error, sqlstate, constraintName string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlstate && (constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	msg := err.Error()
	if !strings.Contains(msg, sqliteMarkers[sqlstate]) {
		return false
	}
	return constraintName == "" || strings.Contains(msg, constraintName)
}

// IsUniqueViolation reports a unique constraint failure on postgres or
// sqlite. When constraintName is set the constraint (or, on sqlite, the
// column list) must appear in the error as well.
func IsUniqueViolation(err error, constraintName string) bool {
	return violates(err, pgUniqueViolation, constraintName)
}

// IsForeignKeyViolation reports a row still referenced by, or referencing a
// missing, parent row.
func IsForeignKeyViolation(err error) bool {
	return violates(err, pgForeignKeyViolation, "")
}

func IsCheckViolation(err error) bool {
	return violates(err, pgCheckViolation, "")
}

// IsNotFound reports whether err is gorm's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
