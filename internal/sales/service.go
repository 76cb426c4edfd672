// Package sales kasa satışları. Satış oluşturma ve silme; stok, stok hareketleri,
// müşteri bakiyesi ve cari hareket değişikliklerini tek transaction içinde yapar.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/inventory"
	"magaza-backend/internal/ledger"
	"magaza-backend/internal/models"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type ItemInput struct {
	ProductID uint
	Quantity  int
	UnitPrice *decimal.Decimal // nil ise ürünün satış fiyatı
}

type CreateInput struct {
	CustomerID    *uint
	PaymentMethod models.PaymentMethod
	Items         []ItemInput
	Notes         string
	Actor         audit.Actor
}

// newNumber kısa, okunabilir ve benzersiz belge numarası üretir: S-20250310-1A2B3C4D
func newNumber(prefix string, at time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, at.Format("20060102"), id)
}

// LedgerNotes satıştan doğan cari hareketin notu; satış id'si geri bulmak için gömülür.
func LedgerNotes(saleID uint, notes string) string {
	ref := models.SaleReference(saleID)
	if notes = strings.TrimSpace(notes); notes != "" {
		return ref + " - " + notes
	}
	return ref
}

func validateCreate(in CreateInput) error {
	if !in.PaymentMethod.Valid() {
		return apperr.ValidationField("paymentMethod", "paymentMethod 'cash', 'card' veya 'credit' olmalı")
	}
	if len(in.Items) == 0 {
		return apperr.ValidationField("items", "Sepet boş olamaz")
	}
	for i, it := range in.Items {
		if it.ProductID == 0 {
			return apperr.ValidationField(fmt.Sprintf("items[%d].productId", i), "productId zorunlu")
		}
		if it.Quantity <= 0 {
			return apperr.ValidationField(fmt.Sprintf("items[%d].quantity", i), "quantity 0'dan büyük olmalı")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return apperr.ValidationField(fmt.Sprintf("items[%d].unitPrice", i), "unitPrice negatif olamaz")
		}
	}
	if in.PaymentMethod == models.PaymentCredit && (in.CustomerID == nil || *in.CustomerID == 0) {
		return apperr.Business("Veresiye satış için müşteri seçilmelidir")
	}
	return nil
}

// Create satışı kaydeder. Herhangi bir kalemde stok yetmezse hiçbir değişiklik yapılmaz.
// Müşteriye bağlı satış, tutarı kadar tek bir borç hareketi oluşturur.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Sale, error) {
	if in.CustomerID != nil && *in.CustomerID == 0 {
		in.CustomerID = nil
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	now := s.now()

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// kilit sırası: önce müşteri, sonra ürünler
		var customer *models.Customer
		if in.CustomerID != nil {
			var err error
			if customer, err = ledger.LockCustomer(tx, *in.CustomerID); err != nil {
				return err
			}
			if !customer.IsActive {
				return apperr.Business("Pasif müşteriye satış yapılamaz")
			}
		}

		requested := make(map[uint]int, len(in.Items))
		items := make([]models.SaleItem, 0, len(in.Items))
		total := decimal.Zero
		for _, it := range in.Items {
			p, err := inventory.LockProduct(tx, it.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return apperr.Business(fmt.Sprintf("Ürün satışta değil: %s", p.Name))
			}
			requested[p.ID] += it.Quantity
			if requested[p.ID] > p.CurrentStock {
				return inventory.InsufficientStock(p, requested[p.ID])
			}

			unit := p.RetailPrice
			if it.UnitPrice != nil {
				unit = it.UnitPrice.Round(2)
			}
			line := unit.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
			total = total.Add(line)
			items = append(items, models.SaleItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				UnitPrice:   unit,
				TotalPrice:  line,
			})
		}

		sale = models.Sale{
			SaleNumber:    newNumber("S", now),
			CustomerID:    in.CustomerID,
			UserID:        in.Actor.IDPtr(),
			PaymentMethod: in.PaymentMethod,
			TotalAmount:   total,
			Notes:         strings.TrimSpace(in.Notes),
			SaleDate:      now,
			Items:         items,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		for _, item := range sale.Items {
			if _, err := inventory.ApplyStockChange(tx, inventory.StockChange{
				ProductID:   item.ProductID,
				Quantity:    -item.Quantity,
				Type:        models.StockMovementSale,
				Reason:      "Satış " + sale.SaleNumber,
				ReferenceID: &sale.ID,
				UserID:      in.Actor.IDPtr(),
			}); err != nil {
				return err
			}
		}

		if customer != nil {
			saleID := sale.ID
			row := models.BalanceTransaction{
				CustomerID:  customer.ID,
				Type:        models.BalanceTypeDebt,
				Amount:      total,
				Description: fmt.Sprintf("Satış %s", sale.SaleNumber),
				Category:    models.BalanceCategorySale,
				Date:        now,
				SaleID:      &saleID,
				CreatedBy:   in.Actor.IDPtr(),
				Notes:       LedgerNotes(sale.ID, sale.Notes),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("cari hareket kaydedilemedi: %w", err)
			}
			if _, err := ledger.ApplyDelta(tx, customer, row.SignedAmount()); err != nil {
				return err
			}
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       in.Actor,
			EntityType:  audit.EntitySale,
			EntityID:    sale.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Satış %s: %s TL (%s)", sale.SaleNumber, total.StringFixed(2), sale.PaymentMethod),
			After:       saleSnapshot(&sale),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Satış kaydedilemedi")
	}
	return s.Get(ctx, sale.ID)
}

func saleSnapshot(s *models.Sale) map[string]any {
	items := make([]map[string]any, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, map[string]any{
			"productId": it.ProductID,
			"quantity":  it.Quantity,
			"unitPrice": it.UnitPrice.StringFixed(2),
		})
	}
	return map[string]any{
		"id":            s.ID,
		"saleNumber":    s.SaleNumber,
		"customerId":    s.CustomerID,
		"paymentMethod": s.PaymentMethod,
		"totalAmount":   s.TotalAmount.StringFixed(2),
		"items":         items,
	}
}

// findLedgerRow satışın cari hareketini önce sale_id, sonra not referansı ile bulur.
func findLedgerRow(tx *gorm.DB, sale *models.Sale) (*models.BalanceTransaction, error) {
	var rows []models.BalanceTransaction
	if err := tx.Where("sale_id = ?", sale.ID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		ref := models.SaleReference(sale.ID)
		if err := tx.Where("customer_id = ? AND (notes = ? OR notes LIKE ?)", *sale.CustomerID, ref, ref+" - %").
			Limit(1).Find(&rows).Error; err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Delete satışı geri alır: cari hareket ve bakiye, stoklar ve fatura tek transaction'da.
// Cari hareket elle silinmişse bakiyeye dokunulmaz; bakiye hareket toplamına eşit kalır.
func (s *Service) Delete(ctx context.Context, id uint, actor audit.Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sale models.Sale
		if err := tx.Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Satış bulunamadı")
		}

		if sale.CustomerID != nil {
			customer, err := ledger.LockCustomer(tx, *sale.CustomerID)
			if err != nil {
				return err
			}
			row, err := findLedgerRow(tx, &sale)
			if err != nil {
				return err
			}
			if row != nil {
				if _, err := ledger.RemoveTransaction(tx, customer, row); err != nil {
					return err
				}
			}
		}

		for _, item := range sale.Items {
			if _, err := inventory.ApplyStockChange(tx, inventory.StockChange{
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				Type:        models.StockMovementSaleCancel,
				Reason:      "Satış iptali " + sale.SaleNumber,
				ReferenceID: &sale.ID,
				UserID:      actor.IDPtr(),
			}); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Invoice{}).
			Where("sale_id = ? AND status = ?", sale.ID, models.InvoiceIssued).
			Update("status", models.InvoiceCancelled).Error; err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", sale.ID).Delete(&models.SaleItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Sale{}, "id = ?", sale.ID).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntitySale,
			EntityID:    sale.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Satış silindi: %s (%s TL)", sale.SaleNumber, sale.TotalAmount.StringFixed(2)),
			Before:      saleSnapshot(&sale),
		})
	})
	return apperr.Wrap(err, "Satış silinemedi")
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Satış bulunamadı")
	}
	return &sale, nil
}

type Filter struct {
	CustomerID    uint
	PaymentMethod models.PaymentMethod
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Sale, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Sale{})
	if f.CustomerID > 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.PaymentMethod != "" {
		if !f.PaymentMethod.Valid() {
			return nil, 0, apperr.ValidationField("paymentMethod", "Geçersiz ödeme yöntemi")
		}
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.From != nil {
		q = q.Where("sale_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("sale_date < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("Satışlar sayılamadı", err)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 50
	}
	var rows []models.Sale
	if err := q.Preload("Items").Preload("Customer").
		Order("sale_date desc, id desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal("Satışlar listelenemedi", err)
	}
	return rows, total, nil
}
