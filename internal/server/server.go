package server

import (
	"log"
	"time"

	"github.com/UB-ES-2025-B3/fitapp-api/internal/auth"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/calories"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/config"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/execution"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/gamification"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/profile"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/route"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/stats"
	"github.com/UB-ES-2025-B3/fitapp-api/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	storageTZ, err := time.LoadLocation(s.Cfg.StorageTimeZone)
	if err != nil {
		log.Printf("unknown storage timezone %q, falling back to UTC", s.Cfg.StorageTimeZone)
		storageTZ = time.UTC
	}

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	profiles := profile.NewService(s.DB)
	routes := route.NewService(s.DB)
	calorieEngine := calories.NewEngine(s.DB, storageTZ)
	leaderboard := gamification.NewLeaderboard(s.Redis)
	executions := execution.NewService(s.DB, profiles, routes, calorieEngine, leaderboard, s.Stream)
	statistics := stats.NewService(s.DB, profiles, routes, storageTZ)

	profile.RegisterRoutes(s.App.Group("/profiles"), profiles, jwtMiddleware)
	route.RegisterRoutes(s.App.Group("/routes"), routes, jwtMiddleware)
	execution.RegisterRoutes(s.App.Group("/executions"), executions, jwtMiddleware)
	stats.RegisterHomeRoutes(s.App.Group("/home"), statistics, jwtMiddleware)
	stats.RegisterRoutes(s.App.Group("/stats"), statistics, jwtMiddleware, s.Cfg.EvolutionDays)
	gamification.RegisterRoutes(s.App.Group("/gamification"), leaderboard, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
