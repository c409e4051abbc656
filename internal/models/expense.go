package models

import "time"

// Expense is one category of the monthly spending breakdown.
type Expense struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Category    string    `gorm:"size:50;not null" json:"category"`
	Label       string    `gorm:"size:100;not null" json:"label"`
	Description *string   `gorm:"size:255" json:"description"`
	Percentage  float64   `gorm:"not null" json:"percentage"`
	Spent       int64     `gorm:"not null;default:0" json:"spent"`
	Budget      int64     `gorm:"not null" json:"budget"`
	Color       *string   `gorm:"size:30" json:"color"`
	ChartColor  *string   `gorm:"size:30" json:"chart_color"`
	Month       string    `gorm:"size:30;index" json:"month"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}
