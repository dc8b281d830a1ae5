package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/achievement"
	"fitQuestAPI/internal/media"
	"fitQuestAPI/internal/user"
)

type UserService struct {
	db    *pgxpool.Pool
	media media.Store
}

func NewUserService(db *pgxpool.Pool, mediaStore media.Store) *UserService {
	return &UserService{db: db, media: mediaStore}
}

const userColumns = `id, clerk_id, email, username, profile_picture, role, coins, streak_count, last_login, trainer_purchased, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.ProfilePicture,
		&u.Role,
		&u.Coins,
		&u.StreakCount,
		&u.LastLogin,
		&u.TrainerPurchased,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	if req.ClerkID == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: clerkId and email are required", ErrValidation)
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.SplitN(req.Email, "@", 2)[0]
	}

	role := req.Role
	if role == "" {
		role = user.RoleUser
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, profile_picture, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRow(ctx, query,
		uuid.New(), req.ClerkID, req.Email, username, req.ProfilePicture, role))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE clerk_id = $1`, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *UserService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*user.PublicProfile, error) {
	p := &user.PublicProfile{}
	err := s.db.QueryRow(ctx,
		`SELECT id, username, profile_picture FROM users WHERE id = $1`, userID).
		Scan(&p.ID, &p.Username, &p.ProfilePicture)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	current, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	username := current.Username
	if req.Username != nil && strings.TrimSpace(*req.Username) != "" {
		username = strings.TrimSpace(*req.Username)
	}

	picture := current.ProfilePicture
	if req.ProfilePicture != nil {
		picture = *req.ProfilePicture
	}
	if req.ProfilePhoto != nil && *req.ProfilePhoto != "" {
		payload, contentType, err := media.DecodePhoto(*req.ProfilePhoto)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		url, _, err := s.media.Upload(ctx, payload, contentType, "profile-pictures")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
		}
		picture = url
	}

	u, err := scanUser(s.db.QueryRow(ctx, `
		UPDATE users SET username = $2, profile_picture = $3, updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING `+userColumns,
		clerkID, username, picture))
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CheckIn applies the daily login streak rules and records the login
// time. Calling it twice on the same calendar day changes nothing.
func (s *UserService) CheckIn(ctx context.Context, clerkID string) (*user.CheckInResponse, error) {
	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var streak int
	var lastLogin *time.Time
	err = tx.QueryRow(ctx,
		`SELECT streak_count, last_login FROM users WHERE clerk_id = $1 FOR UPDATE`,
		clerkID).Scan(&streak, &lastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	next := user.NextLoginStreak(streak, lastLogin, now)

	_, err = tx.Exec(ctx,
		`UPDATE users SET streak_count = $2, last_login = $3, updated_at = NOW() WHERE clerk_id = $1`,
		clerkID, next, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit check-in: %w", err)
	}

	return &user.CheckInResponse{StreakCount: next, LastLogin: now}, nil
}

func (s *UserService) GetAchievements(ctx context.Context, clerkID string) ([]achievement.Achievement, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, challenge_id, name, reward_coins, completed_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY completed_at DESC`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}
	defer rows.Close()

	achievements := []achievement.Achievement{}
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.ChallengeID, &a.Name, &a.RewardCoins, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}
	return achievements, nil
}

func (s *UserService) GetCompletedChallenges(ctx context.Context, clerkID string) ([]user.CompletedChallenge, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, challenge_id, completed_at, reward
		FROM completed_challenges
		WHERE user_id = $1
		ORDER BY completed_at DESC`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed challenges: %w", err)
	}
	defer rows.Close()

	completed := []user.CompletedChallenge{}
	for rows.Next() {
		var c user.CompletedChallenge
		if err := rows.Scan(&c.ID, &c.ChallengeID, &c.CompletedAt, &c.Reward); err != nil {
			return nil, fmt.Errorf("failed to scan completed challenge: %w", err)
		}
		completed = append(completed, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed challenges: %w", err)
	}
	return completed, nil
}

// JoinedChallenges lists the ids of non-finalized challenges the user
// participates in. The joined set is derived from participant rows, so
// reconciliation removes entries simply by finalizing the challenge.
func (s *UserService) JoinedChallenges(ctx context.Context, clerkID string) ([]uuid.UUID, error) {
	u, err := s.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT cp.challenge_id
		FROM challenge_participants cp
		JOIN challenges c ON c.id = cp.challenge_id
		WHERE cp.user_id = $1 AND c.status <> 'completed'
		ORDER BY cp.joined_at`, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get joined challenges: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan challenge id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating joined challenges: %w", err)
	}
	return ids, nil
}

// resolveUserID maps a Clerk subject to the internal user id.
func resolveUserID(ctx context.Context, q querier, clerkID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	return id, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func logIgnored(op string, err error) {
	if err != nil {
		log.Printf("%s: ignored error: %v", op, err)
	}
}
