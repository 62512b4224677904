package controllers

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var errNotFound = errors.New("record not found")

// OrderEntry is one row of a drag-and-drop reorder batch.
type OrderEntry struct {
	ID    string  `json:"id" binding:"required"`
	Order float64 `json:"order"`
}

// Slugify lower-cases name and joins its words with "-".
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// applyOrder writes every display order in one transaction; an unknown id
// rolls the whole batch back.
func applyOrder(db *gorm.DB, model interface{}, entries []OrderEntry) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			var count int64
			if err := tx.Model(model).Where("id = ?", e.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: %s", errNotFound, e.ID)
			}
			if err := tx.Model(model).Where("id = ?", e.ID).Update("display_order", e.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
