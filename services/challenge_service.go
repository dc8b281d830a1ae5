package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/user"
)

const pgUniqueViolationCode = "23505"

type ChallengeService struct {
	db           *pgxpool.Pool
	notification *NotificationService
}

func NewChallengeService(db *pgxpool.Pool, notificationService *NotificationService) *ChallengeService {
	return &ChallengeService{db: db, notification: notificationService}
}

const challengeColumns = `id, name, description, reward_coins, streak_required, duration_days, media_url, status, start_date, end_date, created_at, updated_at`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	c := &challenge.Challenge{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.RewardCoins,
		&c.StreakRequired,
		&c.DurationDays,
		&c.MediaURL,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateChallenge validates the request and inserts the challenge.
// Only administrators may create challenges.
func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	caller, err := callerRole(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if caller != user.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create challenges", ErrForbidden)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	mediaURL := req.MediaURL
	if mediaURL == "" {
		mediaURL = "/default-media.jpg"
	}

	c, err := scanChallenge(s.db.QueryRow(ctx, `
		INSERT INTO challenges (id, name, description, reward_coins, streak_required, duration_days, media_url, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING `+challengeColumns,
		uuid.New(), req.Name, req.Description, req.RewardCoins, req.StreakRequired,
		req.DurationDays, mediaURL, req.Status, req.StartDate, req.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return c, nil
}

func (s *ChallengeService) ListChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+challengeColumns+` FROM challenges ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	challenges := []challenge.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}
	return challenges, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, id uuid.UUID) (*challenge.Challenge, error) {
	c, err := scanChallenge(s.db.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return c, nil
}

// GetChallengeDetails returns the challenge plus each participant's
// username and profile picture.
func (s *ChallengeService) GetChallengeDetails(ctx context.Context, id uuid.UUID) (*challenge.ChallengeDetails, error) {
	c, err := s.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT u.username, u.profile_picture
		FROM challenge_participants cp
		JOIN users u ON u.id = cp.user_id
		WHERE cp.challenge_id = $1
		ORDER BY cp.joined_at`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	participants := []challenge.ParticipantPhoto{}
	for rows.Next() {
		var p challenge.ParticipantPhoto
		if err := rows.Scan(&p.Username, &p.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if p.PhotoURL == "" {
			p.PhotoURL = "/default-photo.png"
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return &challenge.ChallengeDetails{
		Challenge:     *c,
		RemainingDays: c.RemainingDays(time.Now()),
		Participants:  participants,
	}, nil
}

// UpdateChallenge applies a partial update. The end-after-start
// invariant is re-validated against the merged result and status may
// only move forward.
func (s *ChallengeService) UpdateChallenge(ctx context.Context, clerkID string, id uuid.UUID, req *challenge.UpdateChallengeRequest) (*challenge.Challenge, error) {
	caller, err := callerRole(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}
	if caller != user.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can update challenges", ErrForbidden)
	}

	current, err := s.GetChallenge(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.RewardCoins != nil {
		merged.RewardCoins = *req.RewardCoins
	}
	if req.StreakRequired != nil {
		merged.StreakRequired = *req.StreakRequired
	}
	if req.DurationDays != nil {
		merged.DurationDays = *req.DurationDays
	}
	if req.MediaURL != nil {
		merged.MediaURL = *req.MediaURL
	}
	if req.StartDate != nil {
		merged.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		merged.EndDate = *req.EndDate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
		if !current.Status.CanTransition(*req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, *req.Status)
		}
		merged.Status = *req.Status
	}

	check := challenge.CreateChallengeRequest{
		Name:           merged.Name,
		Description:    merged.Description,
		RewardCoins:    merged.RewardCoins,
		StreakRequired: merged.StreakRequired,
		DurationDays:   merged.DurationDays,
		Status:         merged.Status,
		StartDate:      merged.StartDate,
		EndDate:        merged.EndDate,
	}
	if err := check.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	updated, err := scanChallenge(s.db.QueryRow(ctx, `
		UPDATE challenges
		SET name = $2, description = $3, reward_coins = $4, streak_required = $5,
		    duration_days = $6, media_url = $7, status = $8, start_date = $9,
		    end_date = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING `+challengeColumns,
		id, merged.Name, merged.Description, merged.RewardCoins, merged.StreakRequired,
		merged.DurationDays, merged.MediaURL, merged.Status, merged.StartDate, merged.EndDate))
	if err != nil {
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}
	return updated, nil
}

func (s *ChallengeService) DeleteChallenge(ctx context.Context, clerkID string, id uuid.UUID) error {
	caller, err := callerRole(ctx, s.db, clerkID)
	if err != nil {
		return err
	}
	if caller != user.RoleAdmin {
		return fmt.Errorf("%w: only admins can delete challenges", ErrForbidden)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChallengeNotFound
	}
	return nil
}

// JoinChallenge adds the caller as a participant. The membership check
// and insert happen in one transaction; the unique
// (challenge_id, user_id) constraint makes a concurrent double join
// impossible.
func (s *ChallengeService) JoinChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) error {
	now := time.Now()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c, err := scanChallenge(tx.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, challengeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("failed to get challenge: %w", err)
	}

	if now.After(c.EndDate) {
		return ErrChallengeExpired
	}

	var userID uuid.UUID
	var streakCount int
	err = tx.QueryRow(ctx,
		`SELECT id, streak_count FROM users WHERE clerk_id = $1`, clerkID).
		Scan(&userID, &streakCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if streakCount < c.StreakRequired {
		return fmt.Errorf("%w: need %d, have %d", ErrStreakTooLow, c.StreakRequired, streakCount)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO challenge_participants (id, challenge_id, user_id, daily_streak, completed, coins_earned, joined_at)
		VALUES ($1, $2, $3, 0, FALSE, 0, $4)`,
		uuid.New(), challengeID, userID, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return ErrAlreadyJoined
		}
		return fmt.Errorf("failed to add participant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit join: %w", err)
	}
	return nil
}

// FinalizeExpired sweeps challenges past their end date that were never
// finalized: the status is flipped to completed and every participant
// whose streak covered the full duration gets the reward. Safe to run
// any number of times; a failure on one challenge does not stop the
// sweep. Returns how many challenges were finalized this pass.
func (s *ChallengeService) FinalizeExpired(ctx context.Context) (int, error) {
	now := time.Now()

	rows, err := s.db.Query(ctx, `
		SELECT `+challengeColumns+`
		FROM challenges
		WHERE status <> 'completed' AND end_date < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to find expired challenges: %w", err)
	}

	expired := []challenge.Challenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan challenge: %w", err)
		}
		expired = append(expired, *c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("error iterating expired challenges: %w", err)
	}
	rows.Close()

	finalized := 0
	for i := range expired {
		c := &expired[i]
		if err := s.finalizeChallenge(ctx, c, now); err != nil {
			log.Printf("FinalizeExpired: challenge %s (%s): %v", c.ID, c.Name, err)
			continue
		}
		finalized++
	}
	return finalized, nil
}

func (s *ChallengeService) finalizeChallenge(ctx context.Context, c *challenge.Challenge, now time.Time) error {
	if !c.Status.CanTransition(challenge.StatusCompleted) {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, c.Status)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Guarded flip; a concurrent finalization already in completed
	// state makes this a no-op.
	_, err = tx.Exec(ctx, `
		UPDATE challenges SET status = 'completed', updated_at = NOW()
		WHERE id = $1 AND status <> 'completed'`, c.ID)
	if err != nil {
		return fmt.Errorf("failed to finalize status: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, user_id
		FROM challenge_participants
		WHERE challenge_id = $1 AND completed = FALSE AND daily_streak >= $2
		FOR UPDATE`, c.ID, c.DurationDays)
	if err != nil {
		return fmt.Errorf("failed to find qualifying participants: %w", err)
	}

	type winner struct {
		participantID uuid.UUID
		userID        uuid.UUID
	}
	winners := []winner{}
	for rows.Next() {
		var w winner
		if err := rows.Scan(&w.participantID, &w.userID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating participants: %w", err)
	}
	rows.Close()

	for _, w := range winners {
		if _, err := awardCompletion(ctx, tx, c, w.participantID, w.userID, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit finalization: %w", err)
	}

	if s.notification != nil {
		for _, w := range winners {
			s.notification.NotifyChallengeCompleted(ctx, w.userID, c)
		}
	}
	return nil
}

// awardCompletion marks one participant complete and credits the
// reward. The guarded participant update makes the award exactly-once:
// when another path already completed the participant, nothing else
// runs. Reports whether the reward was granted by this call.
func awardCompletion(ctx context.Context, tx pgx.Tx, c *challenge.Challenge, participantID, userID uuid.UUID, now time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE challenge_participants
		SET completed = TRUE, coins_earned = $2
		WHERE id = $1 AND completed = FALSE`,
		participantID, c.RewardCoins)
	if err != nil {
		return false, fmt.Errorf("failed to complete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET coins = coins + $2, updated_at = NOW() WHERE id = $1`,
		userID, c.RewardCoins)
	if err != nil {
		return false, fmt.Errorf("failed to credit coins: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO completed_challenges (id, user_id, challenge_id, completed_at, reward)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, c.ID, now, c.RewardCoins)
	if err != nil {
		return false, fmt.Errorf("failed to log completed challenge: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO achievements (id, user_id, challenge_id, name, reward_coins, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), userID, c.ID, c.Name, c.RewardCoins, now)
	if err != nil {
		return false, fmt.Errorf("failed to log achievement: %w", err)
	}

	return true, nil
}

func callerRole(ctx context.Context, q querier, clerkID string) (user.Role, error) {
	var role user.Role
	err := q.QueryRow(ctx, `SELECT role FROM users WHERE clerk_id = $1`, clerkID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to resolve caller role: %w", err)
	}
	return role, nil
}
