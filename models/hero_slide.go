package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	HeroSlideHorizontal = "horizontal"
	HeroSlideVertical   = "vertical"
)

type HeroSlide struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	Subtitle  string    `gorm:"type:varchar(255)" json:"subtitle"`
	Image     string    `gorm:"type:varchar(512);not null" json:"image"`
	Type      string    `gorm:"type:varchar(20);not null;default:'horizontal'" json:"type"`
	Order     float64   `gorm:"column:display_order;not null;default:0" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *HeroSlide) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Type == "" {
		h.Type = HeroSlideHorizontal
	}
	return nil
}
