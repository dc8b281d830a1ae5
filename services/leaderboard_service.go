package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/leaderboard"
)

type LeaderboardService struct {
	db *pgxpool.Pool
}

func NewLeaderboardService(db *pgxpool.Pool) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// ChallengeLeaderboard ranks every user with at least one completion
// of the challenge by how many times they completed it. Ties break on
// username ascending so the order is deterministic.
func (s *LeaderboardService) ChallengeLeaderboard(ctx context.Context, challengeID uuid.UUID) ([]leaderboard.Entry, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM challenges WHERE id = $1)`, challengeID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check challenge: %w", err)
	}
	if !exists {
		return nil, ErrChallengeNotFound
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.username, u.profile_picture, COUNT(*) AS completions
		FROM completed_challenges cc
		JOIN users u ON u.id = cc.user_id
		WHERE cc.challenge_id = $1
		GROUP BY u.id, u.username, u.profile_picture
		ORDER BY completions DESC, u.username ASC`, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []leaderboard.Entry{}
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.Username, &e.ProfilePicture, &e.CompletionCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}
	return entries, nil
}
