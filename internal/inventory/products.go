package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/barcode"
	"magaza-backend/internal/models"
)

// üretilen barkod kayıt anında başka bir ürüne verilmişse yeniden denenir
const barcodeInsertRetries = 3

type ProductService struct {
	db  *gorm.DB
	gen *barcode.Generator
}

func NewProductService(db *gorm.DB, gen *barcode.Generator) *ProductService {
	return &ProductService{db: db, gen: gen}
}

type ProductInput struct {
	Name         string
	Barcode      string
	Category     string
	Brand        string
	Season       string
	Description  string
	CostPrice    decimal.Decimal
	RetailPrice  decimal.Decimal
	InitialStock int
	MinStock     int
}

// ProductUpdate nil alanlar değiştirilmez. Barcode boş string verilirse
// mevcut barkod silinir ve kategori varsa yenisi üretilir.
type ProductUpdate struct {
	Name        *string
	Barcode     *string
	Category    *string
	Brand       *string
	Season      *string
	Description *string
	CostPrice   *decimal.Decimal
	RetailPrice *decimal.Decimal
	MinStock    *int
	IsActive    *bool
}

func productSnapshot(p *models.Product) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"name":         p.Name,
		"barcode":      p.BarcodeValue(),
		"category":     p.Category,
		"brand":        p.Brand,
		"costPrice":    p.CostPrice.StringFixed(2),
		"retailPrice":  p.RetailPrice.StringFixed(2),
		"currentStock": p.CurrentStock,
		"minStock":     p.MinStock,
		"isActive":     p.IsActive,
	}
}

// BarcodeError barkod motoru hatalarını API hatalarına çevirir.
func BarcodeError(err error) error {
	switch {
	case errors.Is(err, barcode.ErrCategoryRequired):
		return apperr.ValidationField("category", "Barkod üretmek için kategori zorunlu")
	case errors.Is(err, barcode.ErrUnknownCategory):
		return apperr.ValidationField("category", "Kategori bulunamadı veya kategori kodu yok")
	case errors.Is(err, barcode.ErrGenerationExhausted):
		return apperr.Business("Benzersiz barkod üretilemedi, lütfen tekrar deneyin")
	}
	return apperr.Internal("Barkod üretilemedi", err)
}

func validatePrices(cost, retail decimal.Decimal) error {
	if cost.IsNegative() {
		return apperr.ValidationField("costPrice", "costPrice negatif olamaz")
	}
	if retail.IsNegative() {
		return apperr.ValidationField("retailPrice", "retailPrice negatif olamaz")
	}
	return nil
}

func validateSuppliedBarcode(code string) error {
	if !barcode.ValidateEAN13(code) {
		return apperr.ValidationField("barcode", "Geçersiz EAN-13 barkodu")
	}
	return nil
}

func duplicateBarcode() error {
	return apperr.Conflict("barcode", "Bu barkod başka bir ürüne ait")
}

// Create ürünü kaydeder. Barkod verilmemiş ve kategori varsa barkod üretilir;
// açılış stoğu bir stok hareketi olarak yazılır.
func (s *ProductService) Create(ctx context.Context, in ProductInput, actor audit.Actor) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" {
		return nil, apperr.ValidationField("name", "Ürün adı zorunlu")
	}
	if err := validatePrices(in.CostPrice, in.RetailPrice); err != nil {
		return nil, err
	}
	if in.InitialStock < 0 {
		return nil, apperr.ValidationField("currentStock", "Stok negatif olamaz")
	}
	if in.MinStock < 0 {
		return nil, apperr.ValidationField("minStock", "minStock negatif olamaz")
	}
	supplied := in.Barcode != ""
	if supplied {
		if err := validateSuppliedBarcode(in.Barcode); err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		p := models.Product{
			Name:        in.Name,
			Category:    in.Category,
			Brand:       strings.TrimSpace(in.Brand),
			Season:      strings.TrimSpace(in.Season),
			Description: strings.TrimSpace(in.Description),
			CostPrice:   in.CostPrice.Round(2),
			RetailPrice: in.RetailPrice.Round(2),
			MinStock:    in.MinStock,
			IsActive:    true,
		}

		code := in.Barcode
		if !supplied && in.Category != "" {
			generated, err := s.gen.Generate(ctx, in.Category)
			if err != nil {
				return nil, BarcodeError(err)
			}
			code = generated
		}
		if code != "" {
			p.Barcode = &code
		}

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			if in.InitialStock > 0 {
				if _, err := ApplyStockChange(tx, StockChange{
					ProductID: p.ID,
					Quantity:  in.InitialStock,
					Type:      models.StockMovementAdjustment,
					Reason:    "Açılış stoğu",
					UserID:    actor.IDPtr(),
				}); err != nil {
					return err
				}
				p.CurrentStock = in.InitialStock
			}
			return audit.WriteLog(tx, audit.LogOptions{
				Actor:       actor,
				EntityType:  audit.EntityProduct,
				EntityID:    p.ID,
				Action:      models.AuditActionCreate,
				Description: "Ürün oluşturuldu: " + p.Name,
				After:       productSnapshot(&p),
			})
		})
		if err == nil {
			return &p, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if !supplied && attempt+1 < barcodeInsertRetries {
				continue
			}
			return nil, duplicateBarcode()
		}
		return nil, apperr.Wrap(err, "Ürün oluşturulamadı")
	}
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductUpdate, actor audit.Actor) (*models.Product, error) {
	db := s.db.WithContext(ctx)

	var current models.Product
	if err := db.First(&current, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Ürün bulunamadı")
	}

	next := current
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.ValidationField("name", "Ürün adı boş olamaz")
		}
		next.Name = name
	}
	if in.Category != nil {
		next.Category = strings.TrimSpace(*in.Category)
	}
	if in.Brand != nil {
		next.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Season != nil {
		next.Season = strings.TrimSpace(*in.Season)
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}
	if in.CostPrice != nil {
		next.CostPrice = in.CostPrice.Round(2)
	}
	if in.RetailPrice != nil {
		next.RetailPrice = in.RetailPrice.Round(2)
	}
	if err := validatePrices(next.CostPrice, next.RetailPrice); err != nil {
		return nil, err
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, apperr.ValidationField("minStock", "minStock negatif olamaz")
		}
		next.MinStock = *in.MinStock
	}
	if in.IsActive != nil {
		next.IsActive = *in.IsActive
	}

	if in.Barcode != nil {
		code := strings.TrimSpace(*in.Barcode)
		if code == "" {
			next.Barcode = nil
		} else {
			if err := validateSuppliedBarcode(code); err != nil {
				return nil, err
			}
			next.Barcode = &code
		}
	}

	for attempt := 0; ; attempt++ {
		generated := false
		if next.Barcode == nil && next.Category != "" {
			code, err := s.gen.Generate(ctx, next.Category)
			if err != nil {
				return nil, BarcodeError(err)
			}
			next.Barcode = &code
			generated = true
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			// stok bu yoldan değişmez; stok hareketleri ApplyStockChange üzerinden yapılır
			if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
				"name":         next.Name,
				"barcode":      next.Barcode,
				"category":     next.Category,
				"brand":        next.Brand,
				"season":       next.Season,
				"description":  next.Description,
				"cost_price":   next.CostPrice,
				"retail_price": next.RetailPrice,
				"min_stock":    next.MinStock,
				"is_active":    next.IsActive,
			}).Error; err != nil {
				return err
			}
			return audit.WriteLog(tx, audit.LogOptions{
				Actor:       actor,
				EntityType:  audit.EntityProduct,
				EntityID:    id,
				Action:      models.AuditActionUpdate,
				Description: "Ürün güncellendi: " + next.Name,
				Before:      productSnapshot(&current),
				After:       productSnapshot(&next),
			})
		})
		if err == nil {
			return s.Get(ctx, id)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if generated && attempt+1 < barcodeInsertRetries {
				next.Barcode = nil
				continue
			}
			return nil, duplicateBarcode()
		}
		return nil, apperr.Wrap(err, "Ürün güncellenemedi")
	}
}

// Delete ürünü pasife alır; satış geçmişi korunur.
func (s *ProductService) Delete(ctx context.Context, id uint, actor audit.Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Ürün bulunamadı")
		}
		if !p.IsActive {
			return nil
		}
		if err := tx.Model(&p).Update("is_active", false).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityProduct,
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: "Ürün pasife alındı: " + p.Name,
			Before:      productSnapshot(&p),
		})
	})
	return apperr.Wrap(err, "Ürün silinemedi")
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Ürün bulunamadı")
	}
	return &p, nil
}

// GetByBarcode kasada okutulan barkodun aktif ürününü bulur.
func (s *ProductService) GetByBarcode(ctx context.Context, code string) (*models.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.ValidationField("barcode", "Barkod zorunlu")
	}
	var p models.Product
	if err := s.db.WithContext(ctx).
		Where("barcode = ? AND is_active = ?", code, true).
		First(&p).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("Barkoda ait ürün bulunamadı: %s", code))
	}
	return &p, nil
}

type ProductFilter struct {
	Search   string
	Category string
	Active   *bool
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR barcode LIKE ? OR LOWER(brand) LIKE ?", like, "%"+search+"%", like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	var products []models.Product
	if err := q.Order("name asc").Find(&products).Error; err != nil {
		return nil, apperr.Internal("Ürünler listelenemedi", err)
	}
	return products, nil
}

// LowStock stoğu minStock seviyesine inmiş aktif ürünler.
func (s *ProductService) LowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND current_stock <= min_stock", true).
		Order("current_stock asc, name asc").
		Find(&products).Error; err != nil {
		return nil, apperr.Internal("Düşük stoklu ürünler listelenemedi", err)
	}
	return products, nil
}

func (s *ProductService) SuggestBarcode(ctx context.Context, category string) (barcode.Suggestion, error) {
	sug, err := s.gen.Suggest(ctx, category)
	if err != nil {
		return barcode.Suggestion{}, BarcodeError(err)
	}
	return sug, nil
}
