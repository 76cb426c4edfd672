package customers

import (
	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/export"
	"magaza-backend/internal/validation"
)

type CreateCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=20"`
	Email     string `json:"email" validate:"omitempty,email,max=100"`
	TCNumber  string `json:"tcNumber" validate:"omitempty,tckn"`
	Address   string `json:"address" validate:"max=500"`
	Notes     string `json:"notes" validate:"max=500"`
}

type UpdateCustomerRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Email     *string `json:"email" validate:"omitempty,max=100"`
	TCNumber  *string `json:"tcNumber" validate:"omitempty,max=11"`
	Address   *string `json:"address" validate:"omitempty,max=500"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

func filterFrom(c *fiber.Ctx) Filter {
	return Filter{
		Search:          c.Query("search"),
		WithDebt:        c.QueryBool("withDebt"),
		IncludeInactive: c.QueryBool("includeInactive"),
	}
}

// GET /api/customers?search=&withDebt=true
func ListCustomersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.List(c.UserContext(), filterFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

func GetCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		cust, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cust)
	}
}

// POST /api/customers
func CreateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		cust, err := svc.Create(c.UserContext(), Input{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Phone:     body.Phone,
			Email:     body.Email,
			TCNumber:  body.TCNumber,
			Address:   body.Address,
			Notes:     body.Notes,
		}, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cust)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateCustomerRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		cust, err := svc.Update(c.UserContext(), id, Update{
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Phone:     body.Phone,
			Email:     body.Email,
			TCNumber:  body.TCNumber,
			Address:   body.Address,
			Notes:     body.Notes,
		}, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(cust)
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id, auth.ActorFrom(c)); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/customers/export
func ExportCustomersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.List(c.UserContext(), filterFrom(c))
		if err != nil {
			return err
		}

		str := func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		}
		sheet := export.Sheet{
			Name:    "Müşteriler",
			Headers: []string{"Ad", "Soyad", "Telefon", "Email", "TC Kimlik No", "Adres", "Bakiye"},
			Widths:  []float64{18, 18, 16, 26, 14, 40, 14},
			Rows:    make([][]any, 0, len(rows)),
		}
		for _, r := range rows {
			balance, _ := r.Balance.Float64()
			sheet.Rows = append(sheet.Rows, []any{
				r.FirstName, r.LastName, str(r.Phone), str(r.Email), str(r.TCNumber), r.Address, balance,
			})
		}
		return export.Send(c, "musteriler", sheet)
	}
}
