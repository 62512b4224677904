package models

// OrderCounterName is the counter row that issues short order ids.
const OrderCounterName = "orders"

type Counter struct {
	Name   string `gorm:"type:varchar(64);primaryKey"`
	LastID uint   `gorm:"not null;default:0"`
}

func (Counter) TableName() string {
	return "counters"
}
