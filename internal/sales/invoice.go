package sales

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
)

// IssueInvoice satış için fatura keser. Her satışın en fazla bir faturası olur.
func (s *Service) IssueInvoice(ctx context.Context, saleID uint, actor audit.Actor) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.First(&sale, "id = ?", saleID).Error; err != nil {
			return apperr.FromDB(err, "Satış bulunamadı")
		}

		var existing int64
		if err := tx.Model(&models.Invoice{}).Where("sale_id = ?", sale.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return apperr.Conflict("saleId", "Bu satış için zaten fatura kesilmiş")
		}

		now := s.now()
		inv = models.Invoice{
			SaleID:        sale.ID,
			InvoiceNumber: newNumber("F", now),
			CustomerID:    sale.CustomerID,
			TotalAmount:   sale.TotalAmount,
			Status:        models.InvoiceIssued,
			IssuedAt:      now,
			CreatedBy:     actor.IDPtr(),
		}
		if err := tx.Create(&inv).Error; err != nil {
			return apperr.FromDB(err, "")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityInvoice,
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Fatura kesildi: %s (satış %s)", inv.InvoiceNumber, sale.SaleNumber),
			After:       inv,
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Fatura kesilemedi")
	}
	return &inv, nil
}

type InvoiceFilter struct {
	CustomerID uint
	Status     models.InvoiceStatus
}

func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.WithContext(ctx).Model(&models.Invoice{})
	if f.CustomerID > 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var rows []models.Invoice
	if err := q.Order("issued_at desc, id desc").Find(&rows).Error; err != nil {
		return nil, apperr.Internal("Faturalar listelenemedi", err)
	}
	return rows, nil
}
