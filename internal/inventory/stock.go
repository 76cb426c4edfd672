package inventory

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
)

// StockChange tek bir ürünün stok değişikliği.
type StockChange struct {
	ProductID   uint
	Quantity    int // pozitif giriş, negatif çıkış
	Type        models.StockMovementType
	Reason      string
	ReferenceID *uint
	UserID      *uint
}

// LockProduct ürün satırını transaction sonuna kadar kilitler.
func LockProduct(tx *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("Ürün bulunamadı (id: %d)", id))
	}
	return &p, nil
}

// InsufficientStock mağaza mesaj formatında yetersiz stok hatası.
func InsufficientStock(p *models.Product, requested int) error {
	return apperr.Business(fmt.Sprintf("Yetersiz stok: %s (mevcut: %d, istenen: %d)", p.Name, p.CurrentStock, requested))
}

// ApplyStockChange stoğu değiştirir ve StockMovement kaydı ekler.
// Stok sıfırın altına düşecekse hiçbir şey yazılmaz.
func ApplyStockChange(tx *gorm.DB, ch StockChange) (*models.StockMovement, error) {
	if ch.Quantity == 0 {
		return nil, apperr.ValidationField("quantity", "quantity 0 olamaz")
	}
	p, err := LockProduct(tx, ch.ProductID)
	if err != nil {
		return nil, err
	}
	after := p.CurrentStock + ch.Quantity
	if after < 0 {
		return nil, InsufficientStock(p, -ch.Quantity)
	}

	if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Update("current_stock", after).Error; err != nil {
		return nil, fmt.Errorf("stok güncellenemedi: %w", err)
	}

	mv := models.StockMovement{
		ProductID:   p.ID,
		Type:        ch.Type,
		Quantity:    ch.Quantity,
		StockBefore: p.CurrentStock,
		StockAfter:  after,
		Reason:      strings.TrimSpace(ch.Reason),
		ReferenceID: ch.ReferenceID,
		UserID:      ch.UserID,
	}
	if err := tx.Create(&mv).Error; err != nil {
		return nil, fmt.Errorf("stok hareketi kaydedilemedi: %w", err)
	}
	return &mv, nil
}

type StockService struct {
	db *gorm.DB
}

func NewStockService(db *gorm.DB) *StockService {
	return &StockService{db: db}
}

// Adjust manuel stok düzeltmesi (sayım farkı, fire, mal kabul).
func (s *StockService) Adjust(ctx context.Context, productID uint, quantity int, reason string, actor audit.Actor) (*models.StockMovement, error) {
	var mv *models.StockMovement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		mv, err = ApplyStockChange(tx, StockChange{
			ProductID: productID,
			Quantity:  quantity,
			Type:      models.StockMovementAdjustment,
			Reason:    reason,
			UserID:    actor.IDPtr(),
		})
		if err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityStockMovement,
			EntityID:    mv.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Stok düzeltme: ürün #%d %+d (%d -> %d)", productID, quantity, mv.StockBefore, mv.StockAfter),
			After:       mv,
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Stok düzeltilemedi")
	}
	return mv, nil
}

type MovementFilter struct {
	ProductID uint
	Type      models.StockMovementType
	Limit     int
	Offset    int
}

func (s *StockService) List(ctx context.Context, f MovementFilter) ([]models.StockMovement, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.StockMovement{})
	if f.ProductID > 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("Stok hareketleri sayılamadı", err)
	}
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var rows []models.StockMovement
	if err := q.Preload("Product").Order("id desc").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal("Stok hareketleri listelenemedi", err)
	}
	return rows, total, nil
}
