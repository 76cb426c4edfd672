package ledger

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

var actor = audit.Actor{UserID: 1, UserName: "admin"}

func debt(customerID uint, amount string) CreateInput {
	return CreateInput{CustomerID: customerID, Type: models.BalanceTypeDebt, Amount: testutil.Dec(amount), Actor: actor}
}

func payment(customerID uint, amount string) CreateInput {
	return CreateInput{CustomerID: customerID, Type: models.BalanceTypePayment, Amount: testutil.Dec(amount), Actor: actor}
}

func TestDebtPaymentDeleteScenario(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	cust := testutil.CreateCustomer(t, db, "Ayşe", "Yılmaz")

	d, err := svc.Create(ctx, debt(cust.ID, "150.00"))
	require.NoError(t, err)
	testutil.RequireDecimal(t, "150", d.NewBalance)
	testutil.RequireDecimal(t, "150", testutil.Balance(t, db, cust.ID))
	assert.Equal(t, models.BalanceCategoryManual, d.Transaction.Category)

	p, err := svc.Create(ctx, payment(cust.ID, "50.00"))
	require.NoError(t, err)
	testutil.RequireDecimal(t, "100", p.NewBalance)

	newBalance, err := svc.Delete(ctx, d.Transaction.ID, actor)
	require.NoError(t, err)
	testutil.RequireDecimal(t, "-50", newBalance)
	testutil.RequireDecimal(t, "-50", testutil.Balance(t, db, cust.ID))

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("entity_type = ?", audit.EntityBalanceTransaction).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestUpdateAppliesNetDelta(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	cust := testutil.CreateCustomer(t, db, "Mehmet", "Kaya")

	res, err := svc.Create(ctx, debt(cust.ID, "100"))
	require.NoError(t, err)
	id := res.Transaction.ID

	// tutar değişikliği: 100 borç -> 80 borç
	amount := testutil.Dec("80")
	res, err = svc.Update(ctx, id, UpdateInput{Amount: &amount, Actor: actor})
	require.NoError(t, err)
	testutil.RequireDecimal(t, "80", res.NewBalance)

	// tür değişikliği: 80 borç -> 80 ödeme, bakiye +80'den -80'e
	pay := models.BalanceTypePayment
	res, err = svc.Update(ctx, id, UpdateInput{Type: &pay, Actor: actor})
	require.NoError(t, err)
	testutil.RequireDecimal(t, "-80", res.NewBalance)

	// ikisi birden: 80 ödeme -> 30 borç
	dbt := models.BalanceTypeDebt
	amount = testutil.Dec("30")
	res, err = svc.Update(ctx, id, UpdateInput{Type: &dbt, Amount: &amount, Actor: actor})
	require.NoError(t, err)
	testutil.RequireDecimal(t, "30", res.NewBalance)
	testutil.RequireDecimal(t, "30", testutil.Balance(t, db, cust.ID))

	// sadece açıklama: bakiye değişmez
	desc := "düzeltme"
	res, err = svc.Update(ctx, id, UpdateInput{Description: &desc, Actor: actor})
	require.NoError(t, err)
	testutil.RequireDecimal(t, "30", res.NewBalance)
	assert.Equal(t, "düzeltme", res.Transaction.Description)
}

func TestRandomSequenceKeepsBalanceEqualToSignedSum(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	cust := testutil.CreateCustomer(t, db, "Zeynep", "Demir")

	rng := rand.New(rand.NewSource(7))
	var live []uint
	for i := 0; i < 60; i++ {
		amount := decimal.New(int64(rng.Intn(100000)+1), -2)
		typ := models.BalanceTypeDebt
		if rng.Intn(2) == 0 {
			typ = models.BalanceTypePayment
		}

		switch op := rng.Intn(4); {
		case op <= 1 || len(live) == 0:
			res, err := svc.Create(ctx, CreateInput{CustomerID: cust.ID, Type: typ, Amount: amount, Actor: actor})
			require.NoError(t, err)
			live = append(live, res.Transaction.ID)
		case op == 2:
			idx := rng.Intn(len(live))
			_, err := svc.Update(ctx, live[idx], UpdateInput{Type: &typ, Amount: &amount, Actor: actor})
			require.NoError(t, err)
		default:
			idx := rng.Intn(len(live))
			_, err := svc.Delete(ctx, live[idx], actor)
			require.NoError(t, err)
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	sum, err := svc.Summary(ctx, cust.ID)
	require.NoError(t, err)
	assert.True(t, sum.Consistent, "bakiye %s, hesaplanan %s", sum.Balance, sum.Computed)
	assert.Equal(t, len(live), sum.TransactionCnt)
	assert.True(t, sum.Computed.Equal(sum.TotalDebt.Sub(sum.TotalPayment)))
}

func TestCreateValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	cust := testutil.CreateCustomer(t, db, "Ali", "Can")

	cases := map[string]CreateInput{
		"sıfır tutar":    {CustomerID: cust.ID, Type: models.BalanceTypeDebt, Amount: decimal.Zero},
		"negatif tutar":  {CustomerID: cust.ID, Type: models.BalanceTypeDebt, Amount: testutil.Dec("-5")},
		"üç ondalık":     {CustomerID: cust.ID, Type: models.BalanceTypeDebt, Amount: testutil.Dec("1.005")},
		"bilinmeyen tür": {CustomerID: cust.ID, Type: "refund", Amount: testutil.Dec("5")},
		"müşteri yok":    {Type: models.BalanceTypeDebt, Amount: testutil.Dec("5")},
		"hatalı tarih":   {CustomerID: cust.ID, Type: models.BalanceTypeDebt, Amount: testutil.Dec("5"), Date: "10/03/2025"},
	}
	for name, in := range cases {
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
	testutil.RequireDecimal(t, "0", testutil.Balance(t, db, cust.ID))
}

func TestMissingRowsAreNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, debt(999, "10"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	amount := testutil.Dec("10")
	_, err = svc.Update(ctx, 999, UpdateInput{Amount: &amount})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Delete(ctx, 999, actor)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInactiveCustomerRejected(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	cust := testutil.CreateCustomer(t, db, "Pasif", "Müşteri")
	require.NoError(t, db.Model(cust).Update("is_active", false).Error)

	_, err := svc.Create(context.Background(), debt(cust.ID, "10"))
	assert.ErrorIs(t, err, apperr.ErrBusiness)

	var count int64
	require.NoError(t, db.Model(&models.BalanceTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateUsesResolvedDate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	now := time.Date(2025, 3, 10, 14, 30, 15, 0, time.UTC)
	svc.now = func() time.Time { return now }
	cust := testutil.CreateCustomer(t, db, "Tarih", "Test")

	in := debt(cust.ID, "10")
	in.Date = "2025-03-01"
	res, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 14, 30, 15, 0, time.UTC), res.Transaction.Date)
}

func TestReconcileRepairsDrift(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	cust := testutil.CreateCustomer(t, db, "Drift", "Test")

	_, err := svc.Create(ctx, debt(cust.ID, "40"))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Customer{}).Where("id = ?", cust.ID).Update("balance", testutil.Dec("999")).Error)

	sum, err := svc.Summary(ctx, cust.ID)
	require.NoError(t, err)
	assert.False(t, sum.Consistent)

	sum, err = svc.Reconcile(ctx, cust.ID, actor)
	require.NoError(t, err)
	assert.True(t, sum.Consistent)
	testutil.RequireDecimal(t, "40", testutil.Balance(t, db, cust.ID))
}

func TestListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	a := testutil.CreateCustomer(t, db, "A", "A")
	b := testutil.CreateCustomer(t, db, "B", "B")

	for _, in := range []CreateInput{debt(a.ID, "10"), payment(a.ID, "5"), debt(b.ID, "7")} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	rows, total, err := svc.List(ctx, Filter{CustomerID: a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)
	require.NotNil(t, rows[0].Customer)

	_, total, err = svc.List(ctx, Filter{Type: models.BalanceTypeDebt})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	_, _, err = svc.List(ctx, Filter{Type: "x"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
