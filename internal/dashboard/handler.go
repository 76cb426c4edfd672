package dashboard

import (
	"github.com/gofiber/fiber/v2"

	"magaza-backend/internal/apperr"
)

// GET /api/dashboard/summary
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sum, err := svc.Summary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(sum)
	}
}

// GET /api/dashboard/sales-chart?period=daily&count=7
func SalesChartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := Period(c.Query("period", string(PeriodDaily)))

		count := 0
		if raw := c.Query("count"); raw != "" {
			n := c.QueryInt("count", -1)
			if n <= 0 {
				return apperr.ValidationField("count", "count geçersiz")
			}
			count = n
		}

		chart, err := svc.SalesChart(c.UserContext(), period, count)
		if err != nil {
			return err
		}
		return c.JSON(chart)
	}
}
