package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentCredit PaymentMethod = "credit" // veresiye, müşteri zorunlu
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentCard || m == PaymentCredit
}

// SaleReferencePrefix satıştan doğan cari hareketin notes alanındaki referans öneki.
const SaleReferencePrefix = "Satış fatura no: "

// SaleReference satış id'sini cari hareket notuna gömülecek metne çevirir.
func SaleReference(saleID uint) string {
	return fmt.Sprintf("%s%d", SaleReferencePrefix, saleID)
}

type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	SaleNumber    string          `gorm:"size:40;not null;uniqueIndex" json:"saleNumber"`
	CustomerID    *uint           `gorm:"index" json:"customerId"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	UserID        *uint           `gorm:"index" json:"userId"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalAmount"`
	Notes         string          `gorm:"size:500" json:"notes"`
	SaleDate      time.Time       `gorm:"index;not null" json:"saleDate"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Sale) TableName() string { return "sales" }

// SaleItem satış anındaki birim fiyatı kilitler.
type SaleItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SaleID      uint            `gorm:"index;not null" json:"saleId"`
	ProductID   uint            `gorm:"index;not null" json:"productId"`
	ProductName string          `gorm:"size:200" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (SaleItem) TableName() string { return "sale_items" }
