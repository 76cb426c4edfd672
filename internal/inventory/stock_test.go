package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

func TestAdjustStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, f.db, "Çorap", 3, "25")

	mv, err := f.stock.Adjust(ctx, p.ID, 5, "Mal kabul", actor)
	require.NoError(t, err)
	assert.Equal(t, 3, mv.StockBefore)
	assert.Equal(t, 8, mv.StockAfter)
	assert.Equal(t, 8, testutil.Stock(t, f.db, p.ID))

	_, err = f.stock.Adjust(ctx, p.ID, -9, "Fire", actor)
	require.ErrorIs(t, err, apperr.ErrBusiness)
	assert.Contains(t, err.Error(), "mevcut: 8, istenen: 9")
	assert.Equal(t, 8, testutil.Stock(t, f.db, p.ID))

	_, err = f.stock.Adjust(ctx, p.ID, 0, "", actor)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.stock.Adjust(ctx, 999, 1, "x", actor)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	rows, total, err := f.stock.List(ctx, MovementFilter{ProductID: p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StockMovementAdjustment, rows[0].Type)
	require.NotNil(t, rows[0].Product)
}
