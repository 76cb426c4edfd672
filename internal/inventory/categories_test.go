package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/models"
)

func TestCategoryCodesAreStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.categories.Create(ctx, CategoryInput{Name: "Ayakkabı", SortOrder: 5}, actor)
	require.NoError(t, err)
	b, err := f.categories.Create(ctx, CategoryInput{Name: "Çanta", SortOrder: 1}, actor)
	require.NoError(t, err)
	assert.Equal(t, "01", a.CodeValue())
	assert.Equal(t, "02", b.CodeValue())

	// sıralama değişse de kodlar aynı kalır
	order := 0
	_, err = f.categories.Update(ctx, a.ID, CategoryUpdate{SortOrder: &order}, actor)
	require.NoError(t, err)
	code, err := f.gen.CategoryCode(ctx, "Çanta")
	require.NoError(t, err)
	assert.Equal(t, "02", code)

	// pasif kategorinin kodu yeniden kullanılmaz
	require.NoError(t, f.categories.Delete(ctx, a.ID, actor))
	c, err := f.categories.Create(ctx, CategoryInput{Name: "Aksesuar"}, actor)
	require.NoError(t, err)
	assert.Equal(t, "03", c.CodeValue())
}

func TestCategoryDuplicateName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.categories.Create(ctx, CategoryInput{Name: "Ayakkabı"}, actor)
	require.NoError(t, err)

	_, err = f.categories.Create(ctx, CategoryInput{Name: "Ayakkabı"}, actor)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCategoryRenameMovesProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, CategoryInput{Name: "Ayakkabi"}, actor)
	require.NoError(t, err)
	p, err := f.products.Create(ctx, ProductInput{Name: "Bot", Category: "Ayakkabi"}, actor)
	require.NoError(t, err)
	oldBarcode := p.BarcodeValue()

	name := "Ayakkabı"
	_, err = f.categories.Update(ctx, cat.ID, CategoryUpdate{Name: &name}, actor)
	require.NoError(t, err)

	got, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ayakkabı", got.Category)
	assert.Equal(t, oldBarcode, got.BarcodeValue())

	// önbellek yeni adı görür
	decoded, _, err := f.gen.DecodeCategory(ctx, oldBarcode)
	require.NoError(t, err)
	assert.Equal(t, "Ayakkabı", decoded)
}

func TestCategoryDeleteRefusedWithActiveProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat, err := f.categories.Create(ctx, CategoryInput{Name: "Çanta"}, actor)
	require.NoError(t, err)
	p, err := f.products.Create(ctx, ProductInput{Name: "El çantası", Category: "Çanta"}, actor)
	require.NoError(t, err)

	err = f.categories.Delete(ctx, cat.ID, actor)
	assert.ErrorIs(t, err, apperr.ErrBusiness)

	require.NoError(t, f.products.Delete(ctx, p.ID, actor))
	require.NoError(t, f.categories.Delete(ctx, cat.ID, actor))

	var stored models.Category
	require.NoError(t, f.db.First(&stored, cat.ID).Error)
	assert.False(t, stored.IsActive)

	active, err := f.categories.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}
