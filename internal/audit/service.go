package audit

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"magaza-backend/internal/models"
)

// Actor işlemi yapan kullanıcı.
type Actor struct {
	UserID   uint
	UserName string
}

// IDPtr kayıtlarda nullable kullanıcı kolonları için.
func (a Actor) IDPtr() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}

type LogOptions struct {
	Actor       Actor
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

const (
	EntityBalanceTransaction = "balance_transaction"
	EntitySale               = "sale"
	EntityProduct            = "product"
	EntityCategory           = "category"
	EntityCustomer           = "customer"
	EntityStockMovement      = "stock_movement"
	EntityUser               = "user"
	EntityInvoice            = "invoice"
)

func toJSON(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// WriteLog denetim kaydını verilen bağlantı/transaction üzerinden yazar.
// Çağıran transaction içindeyse log da aynı commit/rollback'e tabidir.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.Actor.IDPtr(),
		UserName:    opts.Actor.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  toJSON(opts.Before),
		AfterData:   toJSON(opts.After),
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
