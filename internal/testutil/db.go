// Package testutil test paketlerinin paylaştığı yardımcılar.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"
)

var dbSeq atomic.Int64

// NewDB migration'ı yapılmış, teste özel bellek içi SQLite veritabanı açar.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:magaza_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Open(database.Options{Driver: config.DriverSQLite, DSN: dsn, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func CreateCustomer(t *testing.T, db *gorm.DB, first, last string) *models.Customer {
	t.Helper()
	c := &models.Customer{FirstName: first, LastName: last, Balance: decimal.Zero, IsActive: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateProduct(t *testing.T, db *gorm.DB, name string, stock int, price string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:         name,
		RetailPrice:  Dec(price),
		CostPrice:    decimal.Zero,
		CurrentStock: stock,
		IsActive:     true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func CreateCategory(t *testing.T, db *gorm.DB, name string, sortOrder int, code string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, SortOrder: sortOrder, IsActive: true}
	if code != "" {
		c.Code = &code
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Balance müşterinin güncel bakiyesini veritabanından okur.
func Balance(t *testing.T, db *gorm.DB, customerID uint) decimal.Decimal {
	t.Helper()
	var c models.Customer
	require.NoError(t, db.First(&c, customerID).Error)
	return c.Balance
}

func Stock(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, productID).Error)
	return p.CurrentStock
}

// RequireDecimal iki tutarın sayısal olarak eşit olduğunu doğrular.
func RequireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, Dec(want).Equal(got), "tutar: want %s, got %s", want, got.String())
}
