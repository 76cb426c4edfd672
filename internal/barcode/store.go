package barcode

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"magaza-backend/internal/models"
)

// ErrNoFreeCategoryCode 01-99 aralığındaki tüm kodlar kullanımda.
var ErrNoFreeCategoryCode = errors.New("boş kategori kodu kalmadı")

// GormLookup Lookup arayüzünün veritabanı karşılığı.
type GormLookup struct {
	db *gorm.DB
}

func NewGormLookup(db *gorm.DB) *GormLookup {
	return &GormLookup{db: db}
}

// CategoryCodes aktif kategorileri sort_order, id sırasıyla yükler. Kodu
// olmayan (eski) kategorilere bu sırayla kalıcı kod atanır.
func (l *GormLookup) CategoryCodes(ctx context.Context) (map[string]string, error) {
	var cats []models.Category
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_active = ?", true).
			Order("sort_order asc, id asc").
			Find(&cats).Error; err != nil {
			return err
		}
		for i := range cats {
			if cats[i].Code != nil {
				continue
			}
			if err := AssignCode(tx, &cats[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(cats))
	for _, c := range cats {
		out[c.Name] = c.CodeValue()
	}
	return out, nil
}

func (l *GormLookup) BarcodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).Model(&models.Product{}).
		Where("barcode = ?", code).
		Count(&count).Error
	return count > 0, err
}

// AssignCode kategoriye kullanılmayan en küçük 2 haneli kodu atar ve kaydeder.
// Kod bir kez atanır; kategoriler silinse ya da yeniden sıralansa da değişmez.
func AssignCode(tx *gorm.DB, cat *models.Category) error {
	code, err := NextFreeCode(tx)
	if err != nil {
		return err
	}
	cat.Code = &code
	if cat.ID == 0 {
		return nil
	}
	return tx.Model(&models.Category{}).Where("id = ?", cat.ID).Update("code", code).Error
}

// NextFreeCode pasif kategoriler dahil hiç kullanılmamış en küçük kodu döner.
func NextFreeCode(tx *gorm.DB) (string, error) {
	var used []string
	if err := tx.Model(&models.Category{}).
		Where("code IS NOT NULL").
		Pluck("code", &used).Error; err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(used))
	for _, c := range used {
		taken[c] = struct{}{}
	}
	for n := 1; n <= 99; n++ {
		code := fmt.Sprintf("%02d", n)
		if _, ok := taken[code]; !ok {
			return code, nil
		}
	}
	return "", ErrNoFreeCategoryCode
}
