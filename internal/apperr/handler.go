package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Response struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Field   string            `json:"field,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// FromDB GORM hatalarını uygulama hatalarına çevirir.
func FromDB(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(notFoundMsg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Message: "Bu kayıt zaten mevcut", Err: err}
	}
	return Internal("Veritabanı hatası", err)
}

// NewErrorHandler fiber.Config.ErrorHandler olarak kullanılır. Production'da
// beklenmeyen hataların detayı istemciye gösterilmez.
func NewErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Response{
				Error:   codeForStatus(fe.Code),
				Message: fe.Message,
			})
		}

		var ae *Error
		if !errors.As(err, &ae) {
			ae = Internal("Beklenmeyen sunucu hatası", err)
		}

		resp := Response{
			Error:   string(ae.Kind),
			Message: ae.Message,
			Field:   ae.Field,
			Fields:  ae.Fields,
		}

		if ae.Kind == KindInternal {
			log.Error().Err(err).Str("path", c.Path()).Msg("beklenmeyen hata")
			if production {
				resp.Message = "Beklenmeyen sunucu hatası"
			} else if ae.Err != nil {
				resp.Message = ae.Error()
			}
		}

		return c.Status(ae.Status()).JSON(resp)
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return string(KindValidation)
	case fiber.StatusUnauthorized:
		return string(KindUnauthorized)
	case fiber.StatusForbidden:
		return string(KindForbidden)
	case fiber.StatusNotFound:
		return string(KindNotFound)
	case fiber.StatusTooManyRequests:
		return "TOO_MANY_REQUESTS"
	}
	if status >= fiber.StatusInternalServerError {
		return string(KindInternal)
	}
	return "ERROR"
}
