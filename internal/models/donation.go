package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Donation is one row of the append-only donation ledger.
type Donation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Message   *string   `gorm:"size:500" json:"message"`
	Verified  bool      `gorm:"not null;default:false" json:"verified"`
	OrderCode *int64    `gorm:"uniqueIndex" json:"-"` // set only for webhook-confirmed rows
	CreatedAt time.Time `gorm:"not null;index:idx_donations_created_at,sort:desc" json:"created_at"`
}

func (Donation) TableName() string {
	return "donations"
}

func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// MessageText returns the message or "" when absent.
func (d *Donation) MessageText() string {
	if d.Message == nil {
		return ""
	}
	return *d.Message
}
