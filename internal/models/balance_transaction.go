package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BalanceTransactionType string

const (
	BalanceTypePayment BalanceTransactionType = "payment" // tahsilat, bakiyeyi azaltır
	BalanceTypeDebt    BalanceTransactionType = "debt"    // borç, bakiyeyi artırır
)

func (t BalanceTransactionType) Valid() bool {
	return t == BalanceTypePayment || t == BalanceTypeDebt
}

// Label Türkçe görüntüleme etiketi
func (t BalanceTransactionType) Label() string {
	if t == BalanceTypePayment {
		return "Ödeme"
	}
	return "Borç"
}

// Delta bu türdeki bir hareketin müşteri bakiyesine etkisi: borç +, ödeme -.
func (t BalanceTransactionType) Delta(amount decimal.Decimal) decimal.Decimal {
	if t == BalanceTypePayment {
		return amount.Neg()
	}
	return amount
}

const (
	BalanceCategoryManual = "manual"
	BalanceCategorySale   = "sale"
)

type BalanceTransaction struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	CustomerID  uint                   `gorm:"index;not null" json:"customerId"`
	Customer    *Customer              `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Type        BalanceTransactionType `gorm:"type:varchar(20);not null;index" json:"type"`
	Amount      decimal.Decimal        `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string                 `gorm:"size:500" json:"description"`
	Category    string                 `gorm:"size:50;index" json:"category"`
	Date        time.Time              `gorm:"index;not null" json:"date"`
	SaleID      *uint                  `gorm:"index" json:"saleId"`
	CreatedBy   *uint                  `json:"createdBy"`
	Notes       string                 `gorm:"size:1000" json:"notes"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   time.Time              `json:"updatedAt"`
}

func (BalanceTransaction) TableName() string { return "balance_transactions" }

// SignedAmount satırın bakiyeye katkısı.
func (b *BalanceTransaction) SignedAmount() decimal.Decimal {
	return b.Type.Delta(b.Amount)
}
