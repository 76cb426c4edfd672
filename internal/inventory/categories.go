package inventory

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/barcode"
	"magaza-backend/internal/models"
)

// CategoryService kategori değişikliklerinden sonra barkod kod önbelleğini temizler.
type CategoryService struct {
	db  *gorm.DB
	gen *barcode.Generator
}

func NewCategoryService(db *gorm.DB, gen *barcode.Generator) *CategoryService {
	return &CategoryService{db: db, gen: gen}
}

type CategoryInput struct {
	Name      string
	SortOrder int
	Color     string
}

type CategoryUpdate struct {
	Name      *string
	SortOrder *int
	Color     *string
	IsActive  *bool
}

func duplicateCategory(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("name", "Bu isimde bir kategori zaten var")
	}
	return err
}

func (s *CategoryService) List(ctx context.Context, onlyActive bool) ([]models.Category, error) {
	q := s.db.WithContext(ctx).Model(&models.Category{})
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	var cats []models.Category
	if err := q.Order("sort_order asc, id asc").Find(&cats).Error; err != nil {
		return nil, apperr.Internal("Kategoriler listelenemedi", err)
	}
	return cats, nil
}

// Create kategoriyi kalıcı, daha önce hiç kullanılmamış bir barkod koduyla kaydeder.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput, actor audit.Actor) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.ValidationField("name", "Kategori adı zorunlu")
	}
	cat := models.Category{
		Name:      name,
		SortOrder: in.SortOrder,
		Color:     strings.TrimSpace(in.Color),
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := barcode.AssignCode(tx, &cat); err != nil {
			if errors.Is(err, barcode.ErrNoFreeCategoryCode) {
				return apperr.Business("Kategori kodu kalmadı (en fazla 99 kategori)")
			}
			return err
		}
		if err := tx.Create(&cat).Error; err != nil {
			return duplicateCategory(err)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityCategory,
			EntityID:    cat.ID,
			Action:      models.AuditActionCreate,
			Description: "Kategori oluşturuldu: " + cat.Name + " (" + cat.CodeValue() + ")",
			After:       cat,
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Kategori oluşturulamadı")
	}
	s.gen.Invalidate()
	return &cat, nil
}

// Update ad değişikliğini kategorideki ürünlere de yansıtır. Kod değişmez.
func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryUpdate, actor audit.Actor) (*models.Category, error) {
	var cat models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cat, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Kategori bulunamadı")
		}
		before := cat
		oldName := cat.Name

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.ValidationField("name", "Kategori adı boş olamaz")
			}
			cat.Name = name
		}
		if in.SortOrder != nil {
			cat.SortOrder = *in.SortOrder
		}
		if in.Color != nil {
			cat.Color = strings.TrimSpace(*in.Color)
		}
		if in.IsActive != nil {
			if !*in.IsActive && cat.IsActive {
				if err := ensureNoActiveProducts(tx, oldName); err != nil {
					return err
				}
			}
			cat.IsActive = *in.IsActive
		}

		if err := tx.Save(&cat).Error; err != nil {
			return duplicateCategory(err)
		}
		if cat.Name != oldName {
			if err := tx.Model(&models.Product{}).
				Where("category = ?", oldName).
				Update("category", cat.Name).Error; err != nil {
				return err
			}
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityCategory,
			EntityID:    cat.ID,
			Action:      models.AuditActionUpdate,
			Description: "Kategori güncellendi: " + cat.Name,
			Before:      before,
			After:       cat,
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Kategori güncellenemedi")
	}
	s.gen.Invalidate()
	return &cat, nil
}

// Delete kategoriyi pasife alır; aktif ürünü olan kategori silinemez.
func (s *CategoryService) Delete(ctx context.Context, id uint, actor audit.Actor) error {
	inactive := false
	_, err := s.Update(ctx, id, CategoryUpdate{IsActive: &inactive}, actor)
	return err
}

func ensureNoActiveProducts(tx *gorm.DB, category string) error {
	var count int64
	if err := tx.Model(&models.Product{}).
		Where("category = ? AND is_active = ?", category, true).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperr.Business("Bu kategoriye ait aktif ürünler var, önce ürünleri taşıyın veya pasife alın")
	}
	return nil
}
