package inventory

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/barcode"
)

// GET /api/barcode/validate/:barcode
func ValidateBarcodeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("barcode")
		return c.JSON(fiber.Map{
			"barcode":      code,
			"valid":        barcode.ValidateEAN13(code),
			"storeBarcode": barcode.IsStoreBarcode(code),
			"formatted":    barcode.Format(code),
		})
	}
}

// GET /api/barcode/decode/:barcode
func DecodeBarcodeHandler(gen *barcode.Generator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("barcode")
		category, parts, err := gen.DecodeCategory(c.UserContext(), code)
		switch {
		case errors.Is(err, barcode.ErrUnknownCategory):
			// kod geçerli ama kategori artık aktif değil
			category = ""
		case errors.Is(err, barcode.ErrInvalidBarcode):
			return apperr.ValidationField("barcode", "Geçersiz EAN-13 barkodu")
		case err != nil:
			return apperr.Internal("Barkod çözümlenemedi", err)
		}
		return c.JSON(fiber.Map{
			"barcode":      code,
			"formatted":    barcode.Format(code),
			"countryCode":  parts.CountryCode,
			"companyCode":  parts.CompanyCode,
			"categoryCode": parts.CategoryCode,
			"uniqueId":     parts.UniqueID,
			"category":     category,
			"storeBarcode": barcode.IsStoreBarcode(code),
		})
	}
}
