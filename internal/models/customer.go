package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Customer cari hesap sahibi. Balance > 0 müşterinin mağazaya borcu,
// Balance < 0 mağazanın müşteriye borcudur. Balance her zaman
// balance_transactions satırlarının işaretli toplamına eşit tutulur.
type Customer struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	FirstName string          `gorm:"size:100;not null" json:"firstName"`
	LastName  string          `gorm:"size:100;not null" json:"lastName"`
	Phone     *string         `gorm:"size:20;index" json:"phone"`
	Email     *string         `gorm:"size:100;index" json:"email"`
	TCNumber  *string         `gorm:"column:tc_number;size:11;index" json:"tcNumber"`
	Address   string          `gorm:"size:500" json:"address"`
	Notes     string          `gorm:"size:500" json:"notes"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	IsActive  bool            `gorm:"not null;default:true;index" json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
