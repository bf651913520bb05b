package domain

import (
	"time"
)

// Product is a catalog entry. Category holds a registry key at write
// time but may carry legacy values read from storage; label resolution
// degrades gracefully in that case.
type Product struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"type:text;not null"`
	Model             string    `json:"model" gorm:"type:text;not null;uniqueIndex:ux_products_model"`
	Description       string    `json:"description" gorm:"type:text"`
	Category          string    `json:"category" gorm:"type:text;not null;index"`
	Price             *float64  `json:"price,omitempty" gorm:"type:numeric"`
	Photo             *string   `json:"photo,omitempty" gorm:"type:text"`
	Active            bool      `json:"active" gorm:"not null;default:true"`
	StaffID           *int64    `json:"staff_id,omitempty" gorm:"column:staff_id;index"`
	TechnicalNotes    *string   `json:"technical_notes,omitempty" gorm:"type:text"`
	InstallationNotes *string   `json:"installation_notes,omitempty" gorm:"type:text"`
	UsageNotes        *string   `json:"usage_notes,omitempty" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Row is a product joined with its per-row malfunction counts.
type Row struct {
	Product
	MalfunctionCount int64 `gorm:"column:malfunction_count"`
	CriticalCount    int64 `gorm:"column:critical_count"`
}
