package inventory

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/export"
	"magaza-backend/internal/validation"
)

type CreateProductRequest struct {
	Name         string          `json:"name" validate:"required,max=200"`
	Barcode      string          `json:"barcode" validate:"omitempty,ean13"` // boşsa ve kategori varsa otomatik
	Category     string          `json:"category" validate:"max=100"`
	Brand        string          `json:"brand" validate:"max=100"`
	Season       string          `json:"season" validate:"max=50"`
	Description  string          `json:"description" validate:"max=500"`
	CostPrice    decimal.Decimal `json:"costPrice" validate:"decimal_gte0"`
	RetailPrice  decimal.Decimal `json:"retailPrice" validate:"decimal_gte0"`
	CurrentStock int             `json:"currentStock" validate:"gte=0"`
	MinStock     int             `json:"minStock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Barcode     *string          `json:"barcode" validate:"omitempty,max=13"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Brand       *string          `json:"brand" validate:"omitempty,max=100"`
	Season      *string          `json:"season" validate:"omitempty,max=50"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	CostPrice   *decimal.Decimal `json:"costPrice" validate:"omitempty,decimal_gte0"`
	RetailPrice *decimal.Decimal `json:"retailPrice" validate:"omitempty,decimal_gte0"`
	MinStock    *int             `json:"minStock" validate:"omitempty,gte=0"`
	IsActive    *bool            `json:"isActive"`
}

type SuggestBarcodeRequest struct {
	Category string `json:"category"`
}

// GET /api/products?search=&category=&active=
func ListProductsHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ProductFilter{
			Search:   c.Query("search"),
			Category: c.Query("category"),
		}
		switch c.Query("active", "true") {
		case "true":
			active := true
			f.Active = &active
		case "false":
			active := false
			f.Active = &active
		}

		products, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}

func GetProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// GET /api/products/barcode/:barcode (kasa okutma)
func GetProductByBarcodeHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.GetByBarcode(c.UserContext(), c.Params("barcode"))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// POST /api/products
func CreateProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}

		p, err := svc.Create(c.UserContext(), ProductInput{
			Name:         body.Name,
			Barcode:      body.Barcode,
			Category:     body.Category,
			Brand:        body.Brand,
			Season:       body.Season,
			Description:  body.Description,
			CostPrice:    body.CostPrice,
			RetailPrice:  body.RetailPrice,
			InitialStock: body.CurrentStock,
			MinStock:     body.MinStock,
		}, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// PUT /api/products/:id
func UpdateProductHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body UpdateProductRequest
		if err := validation.ParseAndValidate(c, &body); err != nil {
			return err
		}

		p, err := svc.Update(c.UserContext(), id, ProductUpdate{
			Name:        body.Name,
			Barcode:     body.Barcode,
			Category:    body.Category,
			Brand:       body.Brand,
			Season:      body.Season,
			Description: body.Description,
			CostPrice:   body.CostPrice,
			RetailPrice: body.RetailPrice,
			MinStock:    body.MinStock,
			IsActive:    body.IsActive,
		}, auth.ActorFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(p)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(svc *ProductService) fiber.Handler {
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

// POST /api/products/suggest-barcode {category}
func SuggestBarcodeHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SuggestBarcodeRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.Validation("Geçersiz istek gövdesi")
		}
		sug, err := svc.SuggestBarcode(c.UserContext(), body.Category)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"success": true,
			"data":    sug,
		})
	}
}

// GET /api/products/low-stock
func LowStockHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.LowStock(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(products)
	}
}

// GET /api/products/export
func ExportProductsHandler(svc *ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := svc.List(c.UserContext(), ProductFilter{
			Search:   c.Query("search"),
			Category: c.Query("category"),
		})
		if err != nil {
			return err
		}

		sheet := export.Sheet{
			Name:    "Ürünler",
			Headers: []string{"Ad", "Barkod", "Kategori", "Marka", "Sezon", "Alış", "Satış", "Stok", "Min. Stok", "Durum"},
			Widths:  []float64{32, 16, 18, 18, 12, 12, 12, 8, 10, 10},
			Rows:    make([][]any, 0, len(products)),
		}
		for _, p := range products {
			cost, _ := p.CostPrice.Float64()
			retail, _ := p.RetailPrice.Float64()
			status := "Aktif"
			if !p.IsActive {
				status = "Pasif"
			}
			sheet.Rows = append(sheet.Rows, []any{
				p.Name, p.BarcodeValue(), p.Category, p.Brand, p.Season,
				cost, retail, p.CurrentStock, p.MinStock, status,
			})
		}
		return export.Send(c, "urunler", sheet)
	}
}
