package stats

import (
	"strconv"
	"strings"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/auth"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

// RegisterHomeRoutes exposes the dashboard KPIs.
func RegisterHomeRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/kpis-today", authMiddleware, func(c *fiber.Ctx) error {
		kpis, err := svc.KpisToday(c.Context(), auth.UserID(c))
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(kpis)
	})
}

// RegisterRoutes exposes historical series. Only the kcal metric over the
// configured period (EVOLUTION_DAYS, "30d" by default) is accepted at the
// boundary; the aggregation itself is generic over the day count.
func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler, days int) {
	if days <= 0 {
		days = 30
	}
	acceptedPeriod := strconv.Itoa(days) + "d"

	r.Get("/evolution", authMiddleware, func(c *fiber.Ctx) error {
		metric := c.Query("metric", "kcal")
		period := c.Query("period", acceptedPeriod)

		if !strings.EqualFold(metric, "kcal") {
			return fiber.NewError(fiber.StatusBadRequest, "unsupported metric: "+metric)
		}
		if !strings.EqualFold(period, acceptedPeriod) {
			return fiber.NewError(fiber.StatusBadRequest, "unsupported period: "+period)
		}

		points, err := svc.Evolution(c.Context(), auth.UserID(c), days)
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(fiber.Map{"checkpoints": points})
	})
}
