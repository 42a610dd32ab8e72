package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
)

// Base is embedded by every domain repository. It carries either the pool or
// the transaction the repository was rebound to.
type Base struct {
	db *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB scopes the connection to ctx so cancellation reaches the driver.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tx rebinds to tx; a nil tx keeps the current connection.
func (b Base) Tx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Classify turns a storage error into a typed one named after what. Typed
// errors pass through untouched.
//
//	missing row           -> NOT_FOUND
//	unique violation      -> CONFLICT
//	foreign key violation -> STATE_CONFLICT (still referenced / unknown parent)
//	check violation       -> VALIDATION_ERROR
//	anything else         -> DEPENDENCY_ERROR
func Classify(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case pkgerrors.As(err) != nil:
		return err
	case db.IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, what+" not found")
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, what+" already exists")
	case db.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, what+" is referenced by other records or references a missing one")
	case db.IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, what+" violates a data constraint")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}
