package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/apperr"
)

// ParamID yol parametresindeki pozitif id'yi okur.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Geçersiz ID")
	}
	return uint(id), nil
}

// QueryUint boşsa 0 döner.
func QueryUint(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.ValidationField(name, name+" sayısal olmalı")
	}
	return uint(v), nil
}

// QueryDate YYYY-MM-DD biçimindeki sorgu parametresini okur. Boşsa nil döner.
func QueryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, apperr.ValidationField(name, name+" 'YYYY-MM-DD' formatında olmalı")
	}
	return &t, nil
}

// DateRange from/to sorgu parametrelerini [from, to+1gün) aralığına çevirir.
func DateRange(c *fiber.Ctx) (from, to *time.Time, err error) {
	if from, err = QueryDate(c, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = QueryDate(c, "to"); err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1)
		to = &end
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, apperr.ValidationField("from", "from, to tarihinden sonra olamaz")
	}
	return from, to, nil
}
