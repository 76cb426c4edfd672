package audit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

func TestWriteLogFollowsTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	actor := Actor{UserID: 7, UserName: "kasiyer"}

	require.NoError(t, WriteLog(db, LogOptions{
		Actor:       actor,
		EntityType:  EntitySale,
		EntityID:    3,
		Action:      models.AuditActionCreate,
		Description: strings.Repeat("x", 300),
		After:       map[string]any{"total": "10.00"},
	}))

	rollback := errors.New("geri al")
	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, WriteLog(tx, LogOptions{Actor: actor, EntityType: EntitySale, EntityID: 4, Action: models.AuditActionDelete}))
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	l := logs[0]
	require.NotNil(t, l.UserID)
	assert.EqualValues(t, 7, *l.UserID)
	assert.Equal(t, "kasiyer", l.UserName)
	assert.Len(t, l.Description, 255)
	assert.Equal(t, "null", l.BeforeData)
	assert.JSONEq(t, `{"total":"10.00"}`, l.AfterData)
}

func TestActorIDPtr(t *testing.T) {
	assert.Nil(t, Actor{}.IDPtr())
	id := Actor{UserID: 2}.IDPtr()
	require.NotNil(t, id)
	assert.EqualValues(t, 2, *id)
}

func TestListAuditLogsHandlerFilters(t *testing.T) {
	db := testutil.NewDB(t)
	for _, o := range []LogOptions{
		{EntityType: EntitySale, EntityID: 1, Action: models.AuditActionCreate},
		{EntityType: EntitySale, EntityID: 2, Action: models.AuditActionCreate},
		{EntityType: EntityCustomer, EntityID: 1, Action: models.AuditActionUpdate},
	} {
		require.NoError(t, WriteLog(db, o))
	}

	app := fiber.New()
	app.Get("/audit-logs", ListAuditLogsHandler(db))

	resp, err := app.Test(httptest.NewRequest("GET", "/audit-logs?entityType=sale&entityId=2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)

	var out []AuditLogResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out, 1)
	assert.Equal(t, EntitySale, out[0].EntityType)
	assert.EqualValues(t, 2, out[0].EntityID)
}
