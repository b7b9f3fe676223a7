package execution

import (
	"github.com/UB-ES-2025-B3/fitapp-api/internal/auth"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
)

type executionRequest struct {
	ActivityType *string `json:"activity_type"`
	Notes        *string `json:"notes"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/me/start/:routeId", authMiddleware, func(c *fiber.Ctx) error {
		var req executionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if req.ActivityType == nil {
			return fiber.NewError(fiber.StatusBadRequest, "activity_type required")
		}
		notes := ""
		if req.Notes != nil {
			notes = *req.Notes
		}

		exec, err := svc.Start(c.Context(), auth.UserID(c), c.Params("routeId"), *req.ActivityType, notes)
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(exec)
	})

	r.Post("/me/pause/:executionId", authMiddleware, func(c *fiber.Ctx) error {
		exec, err := svc.Pause(c.Context(), c.Params("executionId"), auth.UserID(c))
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(exec)
	})

	r.Post("/me/resume/:executionId", authMiddleware, func(c *fiber.Ctx) error {
		exec, err := svc.Resume(c.Context(), c.Params("executionId"), auth.UserID(c))
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(exec)
	})

	r.Post("/me/finish/:executionId", authMiddleware, func(c *fiber.Ctx) error {
		var req executionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
			}
		}

		exec, err := svc.Finish(c.Context(), c.Params("executionId"), auth.UserID(c), req.ActivityType, req.Notes)
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(exec)
	})

	r.Get("/me", authMiddleware, func(c *fiber.Ctx) error {
		execs, err := svc.List(c.Context(), auth.UserID(c))
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(execs)
	})

	r.Get("/me/history", authMiddleware, func(c *fiber.Ctx) error {
		execs, err := svc.History(c.Context(), auth.UserID(c))
		if err != nil {
			return fiber.NewError(apperr.Status(err), err.Error())
		}
		return c.JSON(execs)
	})
}
