package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceIssued    InvoiceStatus = "issued"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SaleID        uint            `gorm:"uniqueIndex;not null" json:"saleId"`
	InvoiceNumber string          `gorm:"size:40;not null;uniqueIndex" json:"invoiceNumber"`
	CustomerID    *uint           `gorm:"index" json:"customerId"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null" json:"status"`
	IssuedAt      time.Time       `gorm:"not null" json:"issuedAt"`
	CreatedBy     *uint           `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Invoice) TableName() string { return "invoices" }
