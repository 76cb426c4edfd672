package sales

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/models"
	"magaza-backend/internal/validation"
)

type SaleItemRequest struct {
	ProductID uint             `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"omitempty,decimal_gte0"`
}

type CreateSaleRequest struct {
	CustomerID    *uint             `json:"customerId"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=cash card credit"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes         string            `json:"notes" validate:"max=500"`
}

// POST /api/sales
func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}

		items := make([]ItemInput, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, ItemInput{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}

		sale, err := svc.Create(c.UserContext(), CreateInput{
			CustomerID:    body.CustomerID,
			PaymentMethod: models.PaymentMethod(body.PaymentMethod),
			Items:         items,
			Notes:         body.Notes,
			Actor:         auth.ActorFrom(c),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(sale)
	}
}

// GET /api/sales?customerId=&paymentMethod=&from=&to=
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := validation.QueryUint(c, "customerId")
		if err != nil {
			return err
		}
		from, to, err := validation.DateRange(c)
		if err != nil {
			return err
		}
		rows, total, err := svc.List(c.UserContext(), Filter{
			CustomerID:    customerID,
			PaymentMethod: models.PaymentMethod(c.Query("paymentMethod")),
			From:          from,
			To:            to,
			Limit:         c.QueryInt("limit", 50),
			Offset:        c.QueryInt("offset", 0),
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"data":  rows,
			"total": total,
		})
	}
}

func GetSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		sale, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(sale)
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id, auth.ActorFrom(c)); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Satış silindi, stok ve bakiye geri alındı"})
	}
}

// POST /api/sales/:id/invoice
func IssueInvoiceHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		inv, err := svc.IssueInvoice(c.UserContext(), id, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(inv)
	}
}

// GET /api/invoices?customerId=&status=
func ListInvoicesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := validation.QueryUint(c, "customerId")
		if err != nil {
			return err
		}
		rows, err := svc.ListInvoices(c.UserContext(), InvoiceFilter{
			CustomerID: customerID,
			Status:     models.InvoiceStatus(c.Query("status")),
		})
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}
