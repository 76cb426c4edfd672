package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/barcode"
	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

var actor = audit.Actor{UserID: 1, UserName: "admin"}

type fixture struct {
	db         *gorm.DB
	gen        *barcode.Generator
	products   *ProductService
	categories *CategoryService
	stock      *StockService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	gen := barcode.NewGenerator(barcode.NewGormLookup(db))
	return &fixture{
		db:         db,
		gen:        gen,
		products:   NewProductService(db, gen),
		categories: NewCategoryService(db, gen),
		stock:      NewStockService(db),
	}
}

func TestCreateProductGeneratesCategoryBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, CategoryInput{Name: "Ayakkabı"}, actor)
	require.NoError(t, err)

	p, err := f.products.Create(ctx, ProductInput{
		Name:         "Koşu ayakkabısı",
		Category:     "Ayakkabı",
		RetailPrice:  testutil.Dec("1299.90"),
		InitialStock: 4,
	}, actor)
	require.NoError(t, err)
	require.NotNil(t, p.Barcode)

	parts, err := barcode.Decode(*p.Barcode)
	require.NoError(t, err)
	assert.Equal(t, cat.CodeValue(), parts.CategoryCode)
	assert.True(t, barcode.IsStoreBarcode(*p.Barcode))

	assert.Equal(t, 4, testutil.Stock(t, f.db, p.ID))
	var mv models.StockMovement
	require.NoError(t, f.db.Where("product_id = ?", p.ID).First(&mv).Error)
	assert.Equal(t, models.StockMovementAdjustment, mv.Type)
	assert.Equal(t, 0, mv.StockBefore)
	assert.Equal(t, 4, mv.StockAfter)
}

func TestCreateProductWithoutCategoryHasNoBarcode(t *testing.T) {
	f := newFixture(t)
	p, err := f.products.Create(context.Background(), ProductInput{Name: "Poşet"}, actor)
	require.NoError(t, err)
	assert.Nil(t, p.Barcode)
}

func TestCreateProductSuppliedBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.Create(ctx, ProductInput{Name: "A", Barcode: "5901234123458"}, actor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	p, err := f.products.Create(ctx, ProductInput{Name: "A", Barcode: "5901234123457"}, actor)
	require.NoError(t, err)
	assert.Equal(t, "5901234123457", p.BarcodeValue())

	_, err = f.products.Create(ctx, ProductInput{Name: "B", Barcode: "5901234123457"}, actor)
	require.ErrorIs(t, err, apperr.ErrConflict)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "barcode", ae.Field)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	f := newFixture(t)
	_, err := f.products.Create(context.Background(), ProductInput{Name: "X", Category: "Yok"}, actor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var count int64
	require.NoError(t, f.db.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateProductRegeneratesClearedBarcode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.categories.Create(ctx, CategoryInput{Name: "Çanta"}, actor)
	require.NoError(t, err)

	p, err := f.products.Create(ctx, ProductInput{Name: "Sırt çantası", Barcode: "5901234123457", Category: "Çanta"}, actor)
	require.NoError(t, err)

	empty := ""
	price := testutil.Dec("450")
	updated, err := f.products.Update(ctx, p.ID, ProductUpdate{Barcode: &empty, RetailPrice: &price}, actor)
	require.NoError(t, err)
	require.NotNil(t, updated.Barcode)
	assert.NotEqual(t, "5901234123457", *updated.Barcode)
	assert.True(t, barcode.IsStoreBarcode(*updated.Barcode))
	testutil.RequireDecimal(t, "450", updated.RetailPrice)
}

func TestUpdateProductKeepsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.products.Create(ctx, ProductInput{Name: "Kemer", InitialStock: 7}, actor)
	require.NoError(t, err)

	name := "Deri kemer"
	updated, err := f.products.Update(ctx, p.ID, ProductUpdate{Name: &name}, actor)
	require.NoError(t, err)
	assert.Equal(t, "Deri kemer", updated.Name)
	assert.Equal(t, 7, updated.CurrentStock)
}

func TestGetByBarcodeOnlyActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.products.Create(ctx, ProductInput{Name: "Şapka", Barcode: "4006381333931"}, actor)
	require.NoError(t, err)

	found, err := f.products.GetByBarcode(ctx, "4006381333931")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	require.NoError(t, f.products.Delete(ctx, p.ID, actor))
	_, err = f.products.GetByBarcode(ctx, "4006381333931")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low, err := f.products.Create(ctx, ProductInput{Name: "Az", InitialStock: 1, MinStock: 2}, actor)
	require.NoError(t, err)
	_, err = f.products.Create(ctx, ProductInput{Name: "Çok", InitialStock: 10, MinStock: 2}, actor)
	require.NoError(t, err)

	products, err := f.products.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}

func TestSuggestBarcodeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.products.SuggestBarcode(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.products.SuggestBarcode(ctx, "Bilinmeyen")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.categories.Create(ctx, CategoryInput{Name: "Aksesuar"}, actor)
	require.NoError(t, err)
	sug, err := f.products.SuggestBarcode(ctx, "Aksesuar")
	require.NoError(t, err)
	assert.Equal(t, "01", sug.CategoryCode)
	assert.Equal(t, barcode.Format(sug.Barcode), sug.Formatted)
}
