package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/user"
)

type SocialService struct {
	db *pgxpool.Pool
}

func NewSocialService(db *pgxpool.Pool) *SocialService {
	return &SocialService{db: db}
}

// Follow makes the caller follow the user with the given username.
// Both sides of the relation live in one row, so there is no partial
// follow state to reconcile.
func (s *SocialService) Follow(ctx context.Context, clerkID, targetUsername string) error {
	followerID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	var targetID uuid.UUID
	err = s.db.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1`, targetUsername).Scan(&targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find target user: %w", err)
	}

	if targetID == followerID {
		return ErrSelfFollow
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO follows (follower_id, followed_id) VALUES ($1, $2)`,
		followerID, targetID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return ErrAlreadyFollowing
		}
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

func (s *SocialService) Unfollow(ctx context.Context, clerkID string, targetID uuid.UUID) error {
	followerID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`,
		followerID, targetID)
	if err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFollowing
	}
	return nil
}

func (s *SocialService) Following(ctx context.Context, userID uuid.UUID) ([]user.PublicProfile, error) {
	return s.relatedProfiles(ctx, `
		SELECT u.id, u.username, u.profile_picture
		FROM follows f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = $1
		ORDER BY u.username`, userID)
}

func (s *SocialService) Followers(ctx context.Context, userID uuid.UUID) ([]user.PublicProfile, error) {
	return s.relatedProfiles(ctx, `
		SELECT u.id, u.username, u.profile_picture
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = $1
		ORDER BY u.username`, userID)
}

func (s *SocialService) relatedProfiles(ctx context.Context, query string, userID uuid.UUID) ([]user.PublicProfile, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query follow list: %w", err)
	}
	defer rows.Close()

	profiles := []user.PublicProfile{}
	for rows.Next() {
		var p user.PublicProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.ProfilePicture); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating follow list: %w", err)
	}
	return profiles, nil
}
