package barcode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

func TestGormLookupBackfillsCodesInSortOrder(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateCategory(t, db, "Çanta", 2, "")
	testutil.CreateCategory(t, db, "Ayakkabı", 1, "")
	testutil.CreateCategory(t, db, "Aksesuar", 0, "01")

	codes, err := NewGormLookup(db).CategoryCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Aksesuar": "01", "Ayakkabı": "02", "Çanta": "03"}, codes)

	// kodlar kalıcı: yeniden sıralama sonrası değişmez
	require.NoError(t, db.Model(&models.Category{}).Where("name = ?", "Çanta").Update("sort_order", -5).Error)
	codes, err = NewGormLookup(db).CategoryCodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "03", codes["Çanta"])
}

func TestGormLookupSkipsInactiveButKeepsTheirCodes(t *testing.T) {
	db := testutil.NewDB(t)
	old := testutil.CreateCategory(t, db, "Eski", 0, "01")
	require.NoError(t, db.Model(old).Update("is_active", false).Error)
	testutil.CreateCategory(t, db, "Yeni", 1, "")

	codes, err := NewGormLookup(db).CategoryCodes(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, codes, "Eski")
	assert.Equal(t, "02", codes["Yeni"])
}

func TestNextFreeCodeFillsGaps(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateCategory(t, db, "A", 0, "01")
	testutil.CreateCategory(t, db, "B", 0, "03")

	code, err := NextFreeCode(db)
	require.NoError(t, err)
	assert.Equal(t, "02", code)
}

func TestGormLookupBarcodeExists(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProduct(t, db, "Spor ayakkabı", 3, "100")
	bc := "8681000100000"
	require.NoError(t, db.Model(p).Update("barcode", bc).Error)

	l := NewGormLookup(db)
	exists, err := l.BarcodeExists(context.Background(), bc)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = l.BarcodeExists(context.Background(), "5901234123457")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGeneratorAgainstDatabase(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.CreateCategory(t, db, "Ayakkabı", 0, "01")
	p := testutil.CreateProduct(t, db, "Bot", 1, "500")
	taken, _ := Compose("01", 0)
	require.NoError(t, db.Model(p).Update("barcode", taken).Error)

	g := NewGenerator(NewGormLookup(db), WithIDSource(sequence()))
	s, err := g.Suggest(context.Background(), "Ayakkabı")
	require.NoError(t, err)

	want, _ := Compose("01", 1)
	assert.Equal(t, want, s.Barcode)
	assert.Equal(t, "01", s.CategoryCode)
}
