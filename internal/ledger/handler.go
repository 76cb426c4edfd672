package ledger

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/export"
	"magaza-backend/internal/models"
	"magaza-backend/internal/validation"
)

type CreateBalanceRequest struct {
	CustomerID  uint            `json:"customerId" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=payment debt"`
	Amount      decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Description string          `json:"description" validate:"max=500"`
	Category    string          `json:"category" validate:"max=50"`
	Date        string          `json:"date"`
	Notes       string          `json:"notes" validate:"max=1000"`
}

type UpdateBalanceRequest struct {
	Type        *string          `json:"type" validate:"omitempty,oneof=payment debt"`
	Amount      *decimal.Decimal `json:"amount" validate:"omitempty,decimal_gt0"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Category    *string          `json:"category" validate:"omitempty,max=50"`
	Date        *string          `json:"date"`
	Notes       *string          `json:"notes" validate:"omitempty,max=1000"`
}

func CreateBalanceTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBalanceRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}

		res, err := svc.Create(c.UserContext(), CreateInput{
			CustomerID:  body.CustomerID,
			Type:        models.BalanceTransactionType(body.Type),
			Amount:      body.Amount,
			Description: body.Description,
			Category:    body.Category,
			Date:        body.Date,
			Notes:       body.Notes,
			Actor:       auth.ActorFrom(c),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func UpdateBalanceTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateBalanceRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}

		in := UpdateInput{
			Amount:      body.Amount,
			Description: body.Description,
			Category:    body.Category,
			Date:        body.Date,
			Notes:       body.Notes,
			Actor:       auth.ActorFrom(c),
		}
		if body.Type != nil {
			t := models.BalanceTransactionType(*body.Type)
			in.Type = &t
		}

		res, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func DeleteBalanceTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		newBalance, err := svc.Delete(c.UserContext(), id, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message":    "Cari hareket silindi",
			"newBalance": newBalance,
		})
	}
}

func GetBalanceTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		row, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	customerID, err := validation.QueryUint(c, "customerId")
	if err != nil {
		return Filter{}, err
	}
	from, to, err := validation.DateRange(c)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		CustomerID: customerID,
		Type:       models.BalanceTransactionType(c.Query("type")),
		Category:   c.Query("category"),
		From:       from,
		To:         to,
		Limit:      c.QueryInt("limit", 100),
		Offset:     c.QueryInt("offset", 0),
	}, nil
}

// ListBalanceTransactionsHandler GET /api/balance?customerId=&type=&category=&from=&to=
func ListBalanceTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		rows, total, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"data":  rows,
			"total": total,
		})
	}
}

func ExportBalanceTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := parseFilter(c)
		if err != nil {
			return err
		}
		rows, err := svc.ListAll(c.UserContext(), f)
		if err != nil {
			return err
		}

		sheet := export.Sheet{
			Name:    "Cari Hareketler",
			Headers: []string{"Tarih", "Müşteri", "Tür", "Tutar", "Kategori", "Açıklama", "Not"},
			Widths:  []float64{18, 28, 10, 14, 12, 40, 40},
			Rows:    make([][]any, 0, len(rows)),
		}
		for _, r := range rows {
			customer := ""
			if r.Customer != nil {
				customer = r.Customer.FullName()
			}
			amount, _ := r.SignedAmount().Float64()
			sheet.Rows = append(sheet.Rows, []any{
				r.Date.Format("2006-01-02 15:04"),
				customer,
				r.Type.Label(),
				amount,
				r.Category,
				r.Description,
				r.Notes,
			})
		}
		return export.Send(c, "cari_hareketler", sheet)
	}
}

func BalanceSummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		sum, err := svc.Summary(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(sum)
	}
}

// ReconcileBalanceHandler kayıtlı bakiyeyi hareketlerden yeniden hesaplar (admin).
func ReconcileBalanceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		sum, err := svc.Reconcile(c.UserContext(), id, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(sum)
	}
}
