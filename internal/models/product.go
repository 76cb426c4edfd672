package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:200;not null;index" json:"name"`
	Barcode      *string         `gorm:"size:13;uniqueIndex" json:"barcode"` // EAN-13, kategori varsa otomatik üretilir
	Category     string          `gorm:"size:100;index" json:"category"`
	Brand        string          `gorm:"size:100" json:"brand"`
	Season       string          `gorm:"size:50" json:"season"`
	Description  string          `gorm:"size:500" json:"description"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"costPrice"`
	RetailPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"retailPrice"`
	CurrentStock int             `gorm:"not null;default:0" json:"currentStock"` // negatif olamaz
	MinStock     int             `gorm:"not null;default:0" json:"minStock"`
	IsActive     bool            `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (Product) TableName() string { return "Products" }

// BarcodeValue barkod yoksa boş string döner.
func (p *Product) BarcodeValue() string {
	if p.Barcode == nil {
		return ""
	}
	return *p.Barcode
}
