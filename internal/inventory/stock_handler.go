package inventory

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/models"
	"magaza-backend/internal/validation"
)

type CreateStockMovementRequest struct {
	ProductID uint   `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,ne=0"` // pozitif giriş, negatif çıkış
	Reason    string `json:"reason" validate:"required,max=255"`
}

// POST /api/stock-movements
func CreateStockMovementHandler(svc *StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockMovementRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}
		mv, err := svc.Adjust(c.UserContext(), body.ProductID, body.Quantity, body.Reason, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(mv)
	}
}

// GET /api/stock-movements?productId=&type=
func ListStockMovementsHandler(svc *StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := validation.QueryUint(c, "productId")
		if err != nil {
			return err
		}
		rows, total, err := svc.List(c.UserContext(), MovementFilter{
			ProductID: productID,
			Type:      models.StockMovementType(c.Query("type")),
			Limit:     c.QueryInt("limit", 100),
			Offset:    c.QueryInt("offset", 0),
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

// POST /api/stock-movements/import (multipart: file=.xlsx, reason)
// İlk kolon barkod veya ürün adı, ikinci kolon miktar.
func ImportStockHandler(svc *StockService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return apperr.ValidationField("file", "Dosya yüklenemedi")
		}
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".xlsx") {
			return apperr.ValidationField("file", "Sadece .xlsx dosyaları yüklenebilir")
		}
		f, err := fh.Open()
		if err != nil {
			return apperr.Internal("Dosya açılamadı", err)
		}
		defer f.Close()

		rows, err := ParseImportSheet(f)
		if err != nil {
			return err
		}
		res, err := svc.Import(c.UserContext(), rows, c.FormValue("reason"), auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
