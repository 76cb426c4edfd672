package models

import "time"

type StockMovementType string

const (
	StockMovementSale       StockMovementType = "sale"
	StockMovementSaleCancel StockMovementType = "sale_cancel"
	StockMovementAdjustment StockMovementType = "adjustment"
)

// StockMovement stok değişikliklerinin değişmez denetim kaydı. Sadece eklenir.
type StockMovement struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ProductID   uint              `gorm:"index;not null" json:"productId"`
	Product     *Product          `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Type        StockMovementType `gorm:"type:varchar(20);not null;index" json:"type"`
	Quantity    int               `gorm:"not null" json:"quantity"` // pozitif giriş, negatif çıkış
	StockBefore int               `gorm:"not null" json:"stockBefore"`
	StockAfter  int               `gorm:"not null" json:"stockAfter"`
	Reason      string            `gorm:"size:255" json:"reason"`
	ReferenceID *uint             `gorm:"index" json:"referenceId"` // satış id
	UserID      *uint             `json:"userId"`
	CreatedAt   time.Time         `gorm:"index" json:"createdAt"`
}

func (StockMovement) TableName() string { return "stock_movements" }
