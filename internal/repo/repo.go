package repo

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound     = gorm.ErrRecordNotFound
	ErrDuplicate    = errors.New("duplicate key")
	ErrActiveOrders = errors.New("active orders reference product")
)

type GormRepo struct {
	DB *gorm.DB
}

// locking applies a row lock where the dialect supports it. SQLite has no
// row locks and serialises writers on its own.
func (r *GormRepo) locking(tx *gorm.DB, strength string) *gorm.DB {
	if r.DB.Dialector.Name() != "postgres" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: strength})
}

func wrap(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.WithMessage(ErrNotFound, msg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.WithMessage(ErrDuplicate, msg)
	default:
		return errors.Wrap(err, msg)
	}
}
