package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"magaza-backend/internal/apperr"
	"magaza-backend/internal/barcode"
)

var (
	once     sync.Once
	validate *validator.Validate

	pinRegex = regexp.MustCompile(`^[0-9]{4,6}$`)
)

// Validator paylaşılan validator örneğini döner.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// hata mesajlarında json alan adları görünsün
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("ean13", func(fl validator.FieldLevel) bool {
			return barcode.ValidateEAN13(fl.Field().String())
		})
		_ = v.RegisterValidation("tckn", func(fl validator.FieldLevel) bool {
			return ValidTCKN(fl.Field().String())
		})
		_ = v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
			return pinRegex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && d.IsPositive()
		})
		_ = v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && !d.IsNegative()
		})

		validate = v
	})
	return validate
}

// Struct isteği doğrular ve alan bazlı bir apperr.Validation hatası döner.
func Struct(req interface{}) error {
	err := Validator().Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Geçersiz istek")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return apperr.ValidationFields("Girilen bilgiler geçersiz", fields)
}

// ParseAndValidate fiber gövdesini parse edip doğrular.
func ParseAndValidate(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperr.Validation("Geçersiz istek gövdesi")
	}
	return Struct(req)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "zorunlu alan"
	case "oneof":
		return fmt.Sprintf("şunlardan biri olmalı: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("%s değerinden büyük olmalı", fe.Param())
	case "gte", "min":
		return fmt.Sprintf("en az %s olmalı", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("en fazla %s olmalı", fe.Param())
	case "email":
		return "geçerli bir email olmalı"
	case "ean13":
		return "geçerli bir EAN-13 barkodu olmalı"
	case "tckn":
		return "geçerli bir TC kimlik numarası olmalı"
	case "pin":
		return "4-6 haneli sayısal PIN olmalı"
	case "decimal_gt0":
		return "0'dan büyük bir tutar olmalı"
	case "decimal_gte0":
		return "negatif olamaz"
	case "dive":
		return "geçersiz öğe"
	}
	return fmt.Sprintf("geçersiz (%s)", fe.Tag())
}
