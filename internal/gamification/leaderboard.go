package gamification

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:points"

// Leaderboard mirrors cumulative user points into a redis sorted set so
// rankings never hit postgres. Postgres stays the source of truth; the
// board is best-effort and tolerates a missing redis.
type Leaderboard struct {
	redis *redis.Client
}

type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
	Rank   int    `json:"rank"`
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

// Add increments the user's score. Called from execution finish; failures
// are logged, never propagated.
func (l *Leaderboard) Add(ctx context.Context, userID string, points int64) {
	if l == nil || l.redis == nil || points == 0 {
		return
	}
	if err := l.redis.ZIncrBy(ctx, leaderboardKey, float64(points), userID).Err(); err != nil {
		log.Printf("leaderboard increment failed for user %s: %v", userID, err)
	}
}

// Top returns the highest-scored users, best first.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if l == nil || l.redis == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	members, err := l.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(members))
	for i, m := range members {
		userID, _ := m.Member.(string)
		entries = append(entries, LeaderboardEntry{
			UserID: userID,
			Points: int64(m.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}
