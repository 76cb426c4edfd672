package dashboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

// çarşamba
var fixedNow = time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewService(db)
	svc.now = func() time.Time { return fixedNow }
	return svc, db
}

func addSale(t *testing.T, db *gorm.DB, at time.Time, method models.PaymentMethod, amount string) {
	t.Helper()
	s := models.Sale{
		SaleNumber:    fmt.Sprintf("S-TEST-%d", at.UnixNano()),
		PaymentMethod: method,
		TotalAmount:   testutil.Dec(amount),
		SaleDate:      at,
	}
	require.NoError(t, db.Create(&s).Error)
}

func TestSummary(t *testing.T) {
	svc, db := newService(t)

	addSale(t, db, fixedNow.Add(-time.Hour), models.PaymentCash, "100.25")
	addSale(t, db, fixedNow.Add(-2*time.Hour), models.PaymentCard, "50")
	addSale(t, db, fixedNow.AddDate(0, 0, -1), models.PaymentCash, "999")

	a := testutil.CreateCustomer(t, db, "A", "A")
	b := testutil.CreateCustomer(t, db, "B", "B")
	c := testutil.CreateCustomer(t, db, "C", "C")
	require.NoError(t, db.Model(a).Update("balance", testutil.Dec("200")).Error)
	require.NoError(t, db.Model(b).Update("balance", testutil.Dec("-75.50")).Error)
	require.NoError(t, db.Model(c).Update("balance", testutil.Dec("30")).Error)

	low := testutil.CreateProduct(t, db, "Az kalan", 1, "10")
	require.NoError(t, db.Model(low).Update("min_stock", 5).Error)
	ok := testutil.CreateProduct(t, db, "Bol", 50, "10")
	require.NoError(t, db.Model(ok).Update("min_stock", 5).Error)

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.TodaySaleCount)
	testutil.RequireDecimal(t, "150.25", sum.TodaySaleTotal)
	testutil.RequireDecimal(t, "230", sum.TotalReceivables)
	testutil.RequireDecimal(t, "75.50", sum.TotalStoreDebt)
	assert.Equal(t, int64(1), sum.LowStockCount)
}

func TestSalesChartDailyIncludesEmptyDays(t *testing.T) {
	svc, db := newService(t)
	addSale(t, db, fixedNow.Add(-time.Hour), models.PaymentCash, "10")
	addSale(t, db, fixedNow.Add(-time.Minute), models.PaymentCredit, "5")
	addSale(t, db, fixedNow.AddDate(0, 0, -2), models.PaymentCard, "20")
	addSale(t, db, fixedNow.AddDate(0, 0, -10), models.PaymentCard, "1000")

	chart, err := svc.SalesChart(context.Background(), PeriodDaily, 0)
	require.NoError(t, err)
	require.Len(t, chart.Points, 7)
	assert.Equal(t, "2025-03-06", chart.From)
	assert.Equal(t, "2025-03-12", chart.To)

	today := chart.Points[6]
	assert.Equal(t, "2025-03-12", today.Label)
	testutil.RequireDecimal(t, "10", today.Cash)
	testutil.RequireDecimal(t, "5", today.Credit)
	testutil.RequireDecimal(t, "15", today.Total)
	assert.Equal(t, 2, today.Count)

	testutil.RequireDecimal(t, "20", chart.Points[4].Card)
	assert.True(t, chart.Points[5].Total.IsZero())

	testutil.RequireDecimal(t, "35", chart.GrandTotals.Total)
	assert.Equal(t, 3, chart.GrandTotals.Count)
}

func TestSalesChartWeeklyStartsOnMonday(t *testing.T) {
	svc, db := newService(t)
	// pazartesi 2025-03-10
	addSale(t, db, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), models.PaymentCash, "40")
	// bir önceki pazar, önceki haftaya düşer
	addSale(t, db, time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC), models.PaymentCash, "7")

	chart, err := svc.SalesChart(context.Background(), PeriodWeekly, 2)
	require.NoError(t, err)
	require.Len(t, chart.Points, 2)
	assert.Equal(t, "2025-03-03", chart.Points[0].Label)
	assert.Equal(t, "2025-03-10", chart.Points[1].Label)
	testutil.RequireDecimal(t, "7", chart.Points[0].Total)
	testutil.RequireDecimal(t, "40", chart.Points[1].Total)
	assert.Equal(t, "2025-03-16", chart.To)
}

func TestSalesChartMonthly(t *testing.T) {
	svc, db := newService(t)
	addSale(t, db, time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), models.PaymentCard, "12.50")
	addSale(t, db, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), models.PaymentCard, "3")

	chart, err := svc.SalesChart(context.Background(), PeriodMonthly, 3)
	require.NoError(t, err)
	require.Len(t, chart.Points, 3)
	assert.Equal(t, "2025-01-01", chart.Points[0].Label)
	testutil.RequireDecimal(t, "12.50", chart.Points[0].Card)
	assert.True(t, chart.Points[1].Total.IsZero())
	testutil.RequireDecimal(t, "3", chart.Points[2].Card)
	assert.Equal(t, "2025-03-31", chart.To)
}

func TestSalesChartRejectsBadInput(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SalesChart(context.Background(), Period("yearly"), 3)
	assert.Error(t, err)
	_, err = svc.SalesChart(context.Background(), PeriodDaily, 1000)
	assert.Error(t, err)
}
