// Package ledger müşteri cari hesabı: Customer.balance her zaman
// balance_transactions satırlarının işaretli toplamına (borç +, ödeme -) eşittir.
// Her değişiklik tek bir veritabanı transaction'ı içinde yapılır.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
)

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

type CreateInput struct {
	CustomerID  uint
	Type        models.BalanceTransactionType
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        string
	Notes       string
	Actor       audit.Actor
}

// UpdateInput nil alanlar değiştirilmez.
type UpdateInput struct {
	Type        *models.BalanceTransactionType
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Date        *string
	Notes       *string
	Actor       audit.Actor
}

type Result struct {
	Transaction models.BalanceTransaction `json:"transaction"`
	NewBalance  decimal.Decimal           `json:"newBalance"`
}

// LockCustomer müşteri satırını transaction sonuna kadar kilitler (SELECT ... FOR UPDATE).
// SQLite satır kilidi desteklemez; orada yazma kilidi zaten tüm veritabanını kapsar.
func LockCustomer(tx *gorm.DB, customerID uint) (*models.Customer, error) {
	var c models.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", customerID).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Müşteri bulunamadı")
	}
	return &c, nil
}

// ApplyDelta kilitli müşteri bakiyesine delta ekler ve yeni bakiyeyi döner.
func ApplyDelta(tx *gorm.DB, customer *models.Customer, delta decimal.Decimal) (decimal.Decimal, error) {
	newBalance := customer.Balance.Add(delta)
	if err := tx.Model(&models.Customer{}).
		Where("id = ?", customer.ID).
		Update("balance", newBalance).Error; err != nil {
		return decimal.Zero, fmt.Errorf("bakiye güncellenemedi: %w", err)
	}
	customer.Balance = newBalance
	return newBalance, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.ValidationField("amount", "amount 0'dan büyük olmalı")
	}
	if !amount.Equal(amount.Round(2)) {
		return apperr.ValidationField("amount", "amount en fazla 2 ondalık basamak içerebilir")
	}
	return nil
}

func validateType(t models.BalanceTransactionType) error {
	if !t.Valid() {
		return apperr.ValidationField("type", "type 'payment' veya 'debt' olmalı")
	}
	return nil
}

func snapshot(tx *models.BalanceTransaction) map[string]any {
	return map[string]any{
		"id":          tx.ID,
		"customer_id": tx.CustomerID,
		"type":        string(tx.Type),
		"amount":      tx.Amount.StringFixed(2),
		"description": tx.Description,
		"category":    tx.Category,
		"date":        tx.Date.Format(time.RFC3339),
		"notes":       tx.Notes,
	}
}

// Create yeni cari hareket ekler: borç bakiyeyi artırır, ödeme azaltır.
func (s *Service) Create(ctx context.Context, in CreateInput) (Result, error) {
	if err := validateType(in.Type); err != nil {
		return Result{}, err
	}
	if err := validateAmount(in.Amount); err != nil {
		return Result{}, err
	}
	if in.CustomerID == 0 {
		return Result{}, apperr.ValidationField("customerId", "customerId zorunlu")
	}
	date, err := ResolveDate(in.Date, s.now())
	if err != nil {
		return Result{}, err
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.BalanceCategoryManual
	}

	var res Result
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := LockCustomer(tx, in.CustomerID)
		if err != nil {
			return err
		}
		if !customer.IsActive {
			return apperr.Business("Pasif müşteriye cari hareket eklenemez")
		}

		row := models.BalanceTransaction{
			CustomerID:  customer.ID,
			Type:        in.Type,
			Amount:      in.Amount.Round(2),
			Description: strings.TrimSpace(in.Description),
			Category:    category,
			Date:        date,
			CreatedBy:   in.Actor.IDPtr(),
			Notes:       strings.TrimSpace(in.Notes),
		}
		if err := tx.Create(&row).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		newBalance, err := ApplyDelta(tx, customer, row.SignedAmount())
		if err != nil {
			return err
		}

		res = Result{Transaction: row, NewBalance: newBalance}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       in.Actor,
			EntityType:  audit.EntityBalanceTransaction,
			EntityID:    row.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s eklendi: %s TL - %s", row.Type.Label(), row.Amount.StringFixed(2), customer.FullName()),
			After:       snapshot(&row),
		})
	})
	if err != nil {
		return Result{}, apperr.Wrap(err, "Cari hareket kaydedilemedi")
	}
	return res, nil
}

// Update eski satırın katkısını geri alıp yenisini uygular; net fark bakiyeye tek seferde yazılır.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (Result, error) {
	if in.Type != nil {
		if err := validateType(*in.Type); err != nil {
			return Result{}, err
		}
	}
	if in.Amount != nil {
		if err := validateAmount(*in.Amount); err != nil {
			return Result{}, err
		}
	}
	var newDate *time.Time
	if in.Date != nil {
		d, err := ResolveDate(*in.Date, s.now())
		if err != nil {
			return Result{}, err
		}
		newDate = &d
	}

	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, customer, err := lockTransaction(tx, id)
		if err != nil {
			return err
		}

		before := snapshot(row)
		oldDelta := row.SignedAmount()

		if in.Type != nil {
			row.Type = *in.Type
		}
		if in.Amount != nil {
			row.Amount = in.Amount.Round(2)
		}
		if in.Description != nil {
			row.Description = strings.TrimSpace(*in.Description)
		}
		if in.Category != nil {
			if c := strings.TrimSpace(*in.Category); c != "" {
				row.Category = c
			}
		}
		if newDate != nil {
			row.Date = *newDate
		}
		if in.Notes != nil {
			row.Notes = strings.TrimSpace(*in.Notes)
		}

		if err := tx.Save(row).Error; err != nil {
			return apperr.FromDB(err, "")
		}

		newBalance := customer.Balance
		if delta := row.SignedAmount().Sub(oldDelta); !delta.IsZero() {
			if newBalance, err = ApplyDelta(tx, customer, delta); err != nil {
				return err
			}
		}

		res = Result{Transaction: *row, NewBalance: newBalance}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       in.Actor,
			EntityType:  audit.EntityBalanceTransaction,
			EntityID:    row.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s güncellendi: %s TL - %s", row.Type.Label(), row.Amount.StringFixed(2), customer.FullName()),
			Before:      before,
			After:       snapshot(row),
		})
	})
	if err != nil {
		return Result{}, apperr.Wrap(err, "Cari hareket güncellenemedi")
	}
	return res, nil
}

// Delete satırın bakiyeye katkısını tersine çevirip satırı siler.
func (s *Service) Delete(ctx context.Context, id uint, actor audit.Actor) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, customer, err := lockTransaction(tx, id)
		if err != nil {
			return err
		}

		if newBalance, err = RemoveTransaction(tx, customer, row); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  audit.EntityBalanceTransaction,
			EntityID:    row.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("%s silindi: %s TL - %s", row.Type.Label(), row.Amount.StringFixed(2), customer.FullName()),
			Before:      snapshot(row),
		})
	})
	if err != nil {
		return decimal.Zero, apperr.Wrap(err, "Cari hareket silinemedi")
	}
	return newBalance, nil
}

// lockTransaction önce müşteriyi kilitler, sonra satırı yeniden okur. Tüm yollar
// kilidi müşteri satırında aldığı için aynı müşteriye ait değişiklikler sıralanır.
func lockTransaction(tx *gorm.DB, id uint) (*models.BalanceTransaction, *models.Customer, error) {
	var row models.BalanceTransaction
	if err := tx.Select("id", "customer_id").First(&row, "id = ?", id).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "Cari hareket bulunamadı")
	}
	customer, err := LockCustomer(tx, row.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	row = models.BalanceTransaction{}
	if err := tx.First(&row, "id = ? AND customer_id = ?", id, customer.ID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "Cari hareket bulunamadı")
	}
	return &row, customer, nil
}

// RemoveTransaction kilitli müşteri için satırın katkısını geri alır ve satırı siler.
// Satış silme akışı da bunu kullanır.
func RemoveTransaction(tx *gorm.DB, customer *models.Customer, row *models.BalanceTransaction) (decimal.Decimal, error) {
	newBalance, err := ApplyDelta(tx, customer, row.SignedAmount().Neg())
	if err != nil {
		return decimal.Zero, err
	}
	if err := tx.Delete(&models.BalanceTransaction{}, "id = ?", row.ID).Error; err != nil {
		return decimal.Zero, fmt.Errorf("cari hareket silinemedi: %w", err)
	}
	return newBalance, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.BalanceTransaction, error) {
	var row models.BalanceTransaction
	if err := s.db.WithContext(ctx).Preload("Customer").First(&row, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "Cari hareket bulunamadı")
	}
	return &row, nil
}

type Filter struct {
	CustomerID uint
	Type       models.BalanceTransactionType
	Category   string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

func (s *Service) filtered(ctx context.Context, f Filter) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&models.BalanceTransaction{})
	if f.CustomerID > 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Type != "" {
		if err := validateType(f.Type); err != nil {
			return nil, err
		}
		q = q.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", *f.To)
	}
	return q, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.BalanceTransaction, int64, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("Cari hareketler sayılamadı", err)
	}

	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var rows []models.BalanceTransaction
	if err := q.Preload("Customer").
		Order("date desc, id desc").
		Limit(f.Limit).Offset(f.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, apperr.Internal("Cari hareketler listelenemedi", err)
	}
	return rows, total, nil
}

// ListAll sayfalama olmadan, tarih sırasıyla tüm eşleşen hareketler (Excel çıktısı için).
func (s *Service) ListAll(ctx context.Context, f Filter) ([]models.BalanceTransaction, error) {
	q, err := s.filtered(ctx, f)
	if err != nil {
		return nil, err
	}
	var rows []models.BalanceTransaction
	if err := q.Preload("Customer").Order("date asc, id asc").Find(&rows).Error; err != nil {
		return nil, apperr.Internal("Cari hareketler listelenemedi", err)
	}
	return rows, nil
}

type Summary struct {
	CustomerID      uint            `json:"customerId"`
	TotalDebt       decimal.Decimal `json:"totalDebt"`
	TotalPayment    decimal.Decimal `json:"totalPayment"`
	Computed        decimal.Decimal `json:"computedBalance"`
	Balance         decimal.Decimal `json:"balance"`
	Consistent      bool            `json:"consistent"`
	TransactionCnt  int             `json:"transactionCount"`
	LastTransaction *time.Time      `json:"lastTransaction"`
}

func sumRows(tx *gorm.DB, customerID uint) (Summary, error) {
	var rows []models.BalanceTransaction
	if err := tx.Select("type", "amount", "date").
		Where("customer_id = ?", customerID).
		Find(&rows).Error; err != nil {
		return Summary{}, err
	}
	sum := Summary{CustomerID: customerID, TotalDebt: decimal.Zero, TotalPayment: decimal.Zero}
	for i := range rows {
		r := &rows[i]
		if r.Type == models.BalanceTypeDebt {
			sum.TotalDebt = sum.TotalDebt.Add(r.Amount)
		} else {
			sum.TotalPayment = sum.TotalPayment.Add(r.Amount)
		}
		if sum.LastTransaction == nil || r.Date.After(*sum.LastTransaction) {
			d := r.Date
			sum.LastTransaction = &d
		}
	}
	sum.TransactionCnt = len(rows)
	sum.Computed = sum.TotalDebt.Sub(sum.TotalPayment)
	return sum, nil
}

// Summary borç/ödeme toplamlarını ve kayıtlı bakiyenin hareketlerle tutarlılığını döner.
func (s *Service) Summary(ctx context.Context, customerID uint) (Summary, error) {
	db := s.db.WithContext(ctx)
	var customer models.Customer
	if err := db.First(&customer, "id = ?", customerID).Error; err != nil {
		return Summary{}, apperr.FromDB(err, "Müşteri bulunamadı")
	}
	sum, err := sumRows(db, customerID)
	if err != nil {
		return Summary{}, apperr.Internal("Cari özet hesaplanamadı", err)
	}
	sum.Balance = customer.Balance
	sum.Consistent = sum.Balance.Equal(sum.Computed)
	return sum, nil
}

// Reconcile kayıtlı bakiyeyi hareketlerden yeniden hesaplar.
func (s *Service) Reconcile(ctx context.Context, customerID uint, actor audit.Actor) (Summary, error) {
	var sum Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := LockCustomer(tx, customerID)
		if err != nil {
			return err
		}
		if sum, err = sumRows(tx, customerID); err != nil {
			return err
		}

		old := customer.Balance
		if !old.Equal(sum.Computed) {
			if _, err := ApplyDelta(tx, customer, sum.Computed.Sub(old)); err != nil {
				return err
			}
			if err := audit.WriteLog(tx, audit.LogOptions{
				Actor:       actor,
				EntityType:  audit.EntityCustomer,
				EntityID:    customer.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Bakiye düzeltildi: %s -> %s", old.StringFixed(2), sum.Computed.StringFixed(2)),
				Before:      map[string]any{"balance": old.StringFixed(2)},
				After:       map[string]any{"balance": sum.Computed.StringFixed(2)},
			}); err != nil {
				return err
			}
		}
		sum.Balance = customer.Balance
		sum.Consistent = true
		return nil
	})
	if err != nil {
		return Summary{}, apperr.Wrap(err, "Bakiye düzeltilemedi")
	}
	return sum, nil
}
