package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

var actor = audit.Actor{UserID: 1, UserName: "admin"}

func TestCreateNormalizesOptionalFields(t *testing.T) {
	svc := NewService(testutil.NewDB(t))
	c, err := svc.Create(context.Background(), Input{
		FirstName: " Ayşe ",
		LastName:  "Yılmaz",
		Phone:     "0532 123-45-67",
		Email:     "Ayse@Example.com",
	}, actor)
	require.NoError(t, err)

	require.NotNil(t, c.Phone)
	assert.Equal(t, "05321234567", *c.Phone)
	require.NotNil(t, c.Email)
	assert.Equal(t, "ayse@example.com", *c.Email)
	assert.Nil(t, c.TCNumber)
	assert.True(t, c.Balance.IsZero())
}

func TestUniqueAmongActiveCustomers(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	first, err := svc.Create(ctx, Input{FirstName: "A", LastName: "A", Phone: "05320000000", TCNumber: "10000000146"}, actor)
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{FirstName: "B", LastName: "B", Phone: "0532 000 00 00"}, actor)
	require.ErrorIs(t, err, apperr.ErrConflict)
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "phone", ae.Field)

	_, err = svc.Create(ctx, Input{FirstName: "B", LastName: "B", TCNumber: "10000000146"}, actor)
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "tcNumber", ae.Field)

	// pasif müşterinin bilgileri yeniden kullanılabilir
	require.NoError(t, svc.Delete(ctx, first.ID, actor))
	_, err = svc.Create(ctx, Input{FirstName: "B", LastName: "B", Phone: "05320000000", TCNumber: "10000000146"}, actor)
	require.NoError(t, err)
}

func TestUpdateChecksUniquenessAgainstOthers(t *testing.T) {
	svc := NewService(testutil.NewDB(t))
	ctx := context.Background()
	a, err := svc.Create(ctx, Input{FirstName: "A", LastName: "A", Email: "a@x.com"}, actor)
	require.NoError(t, err)
	b, err := svc.Create(ctx, Input{FirstName: "B", LastName: "B", Email: "b@x.com"}, actor)
	require.NoError(t, err)

	// kendi değerini tekrar göndermek sorun değil
	same := "a@x.com"
	_, err = svc.Update(ctx, a.ID, Update{Email: &same}, actor)
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.ID, Update{Email: &same}, actor)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	empty := ""
	updated, err := svc.Update(ctx, b.ID, Update{Email: &empty}, actor)
	require.NoError(t, err)
	assert.Nil(t, updated.Email)
}

func TestInvalidTCKN(t *testing.T) {
	svc := NewService(testutil.NewDB(t))
	_, err := svc.Create(context.Background(), Input{FirstName: "A", LastName: "B", TCNumber: "12345678901"}, actor)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteRefusedWithOpenBalance(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	c := testutil.CreateCustomer(t, db, "Borçlu", "Müşteri")
	require.NoError(t, db.Model(&models.Customer{}).Where("id = ?", c.ID).Update("balance", testutil.Dec("12.50")).Error)

	err := svc.Delete(ctx, c.ID, actor)
	require.ErrorIs(t, err, apperr.ErrBusiness)
	assert.Contains(t, err.Error(), "12.50")

	got, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	debtor := testutil.CreateCustomer(t, db, "Zeynep", "Demir")
	testutil.CreateCustomer(t, db, "Ali", "Kaya")
	require.NoError(t, db.Model(&models.Customer{}).Where("id = ?", debtor.ID).Update("balance", testutil.Dec("100")).Error)

	rows, err := svc.List(ctx, Filter{WithDebt: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, debtor.ID, rows[0].ID)

	rows, err = svc.List(ctx, Filter{Search: "zeynep dem"})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
