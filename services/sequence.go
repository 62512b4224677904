package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/kebab-storefront/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextSequenceValue increments the named counter inside tx and returns the
// new value. The increment is a single UPDATE so concurrent transactions
// serialise on the counter row; rolling back tx rolls the value back too.
func NextSequenceValue(tx *gorm.DB, name string) (uint, error) {
	res := tx.Model(&models.Counter{}).
		Where("name = ?", name).
		UpdateColumn("last_id", gorm.Expr("last_id + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: %s", ErrCounterMissing, name)
	}

	var counter models.Counter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrCounterMissing, name)
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %s: %w", name, err)
	}
	return counter.LastID, nil
}
