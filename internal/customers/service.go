// Package customers müşteri kartları. Telefon, email ve TC kimlik no aktif
// müşteriler arasında benzersizdir; bakiyesi sıfır olmayan müşteri silinemez.
package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
	"magaza-backend/internal/validation"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Input struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	TCNumber  string
	Address   string
	Notes     string
}

// Update nil alanlar değiştirilmez; boş string opsiyonel alanı temizler.
type Update struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	TCNumber  *string
	Address   *string
	Notes     *string
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// normalizePhone boşluk, tire ve parantezleri atar.
func normalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

func snapshot(c *models.Customer) map[string]any {
	return map[string]any{
		"id":        c.ID,
		"firstName": c.FirstName,
		"lastName":  c.LastName,
		"phone":     c.Phone,
		"email":     c.Email,
		"tcNumber":  c.TCNumber,
		"balance":   c.Balance.StringFixed(2),
		"isActive":  c.IsActive,
	}
}

func validateCustomer(c *models.Customer) error {
	if c.FirstName == "" {
		return apperr.ValidationField("firstName", "Ad zorunlu")
	}
	if c.LastName == "" {
		return apperr.ValidationField("lastName", "Soyad zorunlu")
	}
	if c.TCNumber != nil && !validation.ValidTCKN(*c.TCNumber) {
		return apperr.ValidationField("tcNumber", "Geçersiz TC kimlik numarası")
	}
	return nil
}

// checkUnique aktif müşteriler arasında telefon, email ve TC tekrarını engeller.
func checkUnique(tx *gorm.DB, c *models.Customer) error {
	checks := []struct {
		field  string
		column string
		value  *string
		label  string
	}{
		{"phone", "phone", c.Phone, "telefon numarası"},
		{"email", "email", c.Email, "email adresi"},
		{"tcNumber", "tc_number", c.TCNumber, "TC kimlik numarası"},
	}
	for _, ch := range checks {
		if ch.value == nil {
			continue
		}
		q := tx.Model(&models.Customer{}).
			Where(ch.column+" = ? AND is_active = ?", *ch.value, true)
		if c.ID != 0 {
			q = q.Where("id <> ?", c.ID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict(ch.field, fmt.Sprintf("Bu %s başka bir müşteriye kayıtlı", ch.label))
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input, actor audit.Actor) (*models.Customer, error) {
	c := models.Customer{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     optional(normalizePhone(in.Phone)),
		Email:     optional(strings.ToLower(in.Email)),
		TCNumber:  optional(in.TCNumber),
		Address:   strings.TrimSpace(in.Address),
		Notes:     strings.TrimSpace(in.Notes),
		Balance:   decimal.Zero,
		IsActive:  true,
	}
	if err := validateCustomer(&c); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, &c); err != nil {
			return err
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityCustomer,
			EntityID:    c.ID,
			Action:      models.AuditActionCreate,
			Description: "Müşteri oluşturuldu: " + c.FullName(),
			After:       snapshot(&c),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Müşteri oluşturulamadı")
	}
	return &c, nil
}

// Update bakiyeyi değiştirmez; bakiye sadece cari hareketlerle değişir.
func (s *Service) Update(ctx context.Context, id uint, in Update, actor audit.Actor) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Müşteri bulunamadı")
		}
		before := snapshot(&c)

		if in.FirstName != nil {
			c.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			c.LastName = strings.TrimSpace(*in.LastName)
		}
		if in.Phone != nil {
			c.Phone = optional(normalizePhone(*in.Phone))
		}
		if in.Email != nil {
			c.Email = optional(strings.ToLower(*in.Email))
		}
		if in.TCNumber != nil {
			c.TCNumber = optional(*in.TCNumber)
		}
		if in.Address != nil {
			c.Address = strings.TrimSpace(*in.Address)
		}
		if in.Notes != nil {
			c.Notes = strings.TrimSpace(*in.Notes)
		}
		if err := validateCustomer(&c); err != nil {
			return err
		}
		if c.IsActive {
			if err := checkUnique(tx, &c); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Customer{}).Where("id = ?", c.ID).Updates(map[string]any{
			"first_name": c.FirstName,
			"last_name":  c.LastName,
			"phone":      c.Phone,
			"email":      c.Email,
			"tc_number":  c.TCNumber,
			"address":    c.Address,
			"notes":      c.Notes,
		}).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityCustomer,
			EntityID:    c.ID,
			Action:      models.AuditActionUpdate,
			Description: "Müşteri güncellendi: " + c.FullName(),
			Before:      before,
			After:       snapshot(&c),
		})
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Müşteri güncellenemedi")
	}
	return &c, nil
}

// Delete müşteriyi pasife alır. Açık bakiyesi olan müşteri silinemez.
func (s *Service) Delete(ctx context.Context, id uint, actor audit.Actor) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "Müşteri bulunamadı")
		}
		if !c.Balance.IsZero() {
			return apperr.Business(fmt.Sprintf("Bakiyesi sıfır olmayan müşteri silinemez (bakiye: %s TL)", c.Balance.StringFixed(2)))
		}
		if !c.IsActive {
			return nil
		}
		if err := tx.Model(&c).Update("is_active", false).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityCustomer,
			EntityID:    c.ID,
			Action:      models.AuditActionDelete,
			Description: "Müşteri pasife alındı: " + c.FullName(),
			Before:      snapshot(&c),
		})
	})
	return apperr.Wrap(err, "Müşteri silinemedi")
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Müşteri bulunamadı")
	}
	return &c, nil
}

type Filter struct {
	Search          string
	WithDebt        bool // sadece borçlu (balance > 0)
	IncludeInactive bool
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Customer, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		phone := like
		if digits := normalizePhone(search); digits != "" {
			phone = "%" + digits + "%"
		}
		q = q.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ? OR phone LIKE ? OR tc_number LIKE ?",
			like, like, like, phone, "%"+search+"%",
		)
	}
	if f.WithDebt {
		q = q.Where("balance > 0")
	}

	var rows []models.Customer
	if err := q.Order("first_name asc, last_name asc").Find(&rows).Error; err != nil {
		return nil, apperr.Internal("Müşteriler listelenemedi", err)
	}
	return rows, nil
}
