package gamification

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, board *Leaderboard, authMiddleware fiber.Handler) {
	r.Get("/leaderboard", authMiddleware, func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 10)
		entries, err := board.Top(c.Context(), limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if entries == nil {
			entries = []LeaderboardEntry{}
		}
		return c.JSON(entries)
	})
}
