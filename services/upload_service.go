package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/media"
	"fitQuestAPI/internal/types/challenge"
)

// UploadService handles the daily proof submission flow: one photo per
// participant per calendar day, streak accounting, completion rewards
// and the social post emitted for every accepted upload.
type UploadService struct {
	db           *pgxpool.Pool
	media        media.Store
	notification *NotificationService
}

func NewUploadService(db *pgxpool.Pool, mediaStore media.Store, notificationService *NotificationService) *UploadService {
	return &UploadService{db: db, media: mediaStore, notification: notificationService}
}

// SubmitProof validates the submission, stores the photo and applies
// the streak increment as a single conditional update keyed on
// (challenge, user, last upload day), so two same-day submissions can
// never both land. When the challenge period is over and the streak
// covers the full duration, the reward is granted exactly once; an
// upload arriving after the end date also finalizes the challenge
// status, mirroring what the reconciliation sweep would do.
func (s *UploadService) SubmitProof(ctx context.Context, clerkID string, challengeID uuid.UUID, req *challenge.UploadProofRequest) (*challenge.UploadProofResponse, error) {
	now := time.Now()

	c, err := scanChallenge(s.db.QueryRow(ctx,
		`SELECT `+challengeColumns+` FROM challenges WHERE id = $1`, challengeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	if c.Status != challenge.StatusActive || now.Before(c.StartDate) {
		return nil, ErrChallengeInactive
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	p := challenge.Participant{ChallengeID: challengeID, UserID: userID}
	err = s.db.QueryRow(ctx, `
		SELECT id, last_upload, daily_streak, completed
		FROM challenge_participants
		WHERE challenge_id = $1 AND user_id = $2`,
		challengeID, userID).Scan(&p.ID, &p.LastUpload, &p.DailyStreak, &p.Completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotParticipant
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	if p.UploadedOn(now) {
		return nil, ErrAlreadyUploadedToday
	}

	if req.Photo == "" {
		return nil, fmt.Errorf("%w: photo is required", ErrValidation)
	}
	payload, contentType, err := media.DecodePhoto(req.Photo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	photoURL, objectName, err := s.media.Upload(ctx, payload, contentType, "fitness-challenges")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	resp, err := s.applySubmission(ctx, c, &p, photoURL, req.Caption, now)
	if err != nil {
		// The object was stored but the submission did not count;
		// best-effort cleanup so the bucket does not accumulate
		// orphans.
		logIgnored("SubmitProof: cleanup "+objectName, s.media.Delete(ctx, objectName))
		return nil, err
	}

	if resp.CoinsAwarded > 0 && s.notification != nil {
		s.notification.NotifyChallengeCompleted(ctx, userID, c)
	}
	return resp, nil
}

func (s *UploadService) applySubmission(ctx context.Context, c *challenge.Challenge, p *challenge.Participant, photoURL, caption string, now time.Time) (*challenge.UploadProofResponse, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// The authoritative once-per-day gate: the increment only matches
	// when the recorded upload day differs from today, so a concurrent
	// duplicate that won the race leaves zero rows for this one.
	err = tx.QueryRow(ctx, `
		UPDATE challenge_participants
		SET daily_streak = daily_streak + 1, last_upload = $3, last_upload_day = $4
		WHERE id = $1 AND challenge_id = $2
		  AND (last_upload_day IS NULL OR last_upload_day <> $4)
		RETURNING daily_streak`,
		p.ID, c.ID, now, challenge.LocalDay(now)).Scan(&p.DailyStreak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyUploadedToday
		}
		return nil, fmt.Errorf("failed to increment streak: %w", err)
	}

	coinsAwarded := 0
	if p.QualifiesForReward(c, now) {
		awarded, err := awardCompletion(ctx, tx, c, p.ID, p.UserID, now)
		if err != nil {
			return nil, err
		}
		if awarded {
			coinsAwarded = c.RewardCoins
		}
	}

	// Uploads arriving past the end date finalize the status; the
	// reconciliation sweep would do the same later, both are guarded.
	if !now.Before(c.EndDate) && c.Status != challenge.StatusCompleted {
		_, err = tx.Exec(ctx, `
			UPDATE challenges SET status = 'completed', updated_at = NOW()
			WHERE id = $1 AND status <> 'completed'`, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to finalize challenge: %w", err)
		}
	}

	postID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO posts (id, user_id, challenge_id, caption, media_url, media_type, created_at)
		VALUES ($1, $2, $3, $4, $5, 'photo', $6)`,
		postID, p.UserID, c.ID, caption, photoURL, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	log.Printf("SubmitProof: user %s challenge %s streak %d awarded %d", p.UserID, c.ID, p.DailyStreak, coinsAwarded)

	return &challenge.UploadProofResponse{
		Message:      "Photo uploaded successfully, streak updated",
		PhotoURL:     photoURL,
		CoinsAwarded: coinsAwarded,
		PostID:       postID,
		DailyStreak:  p.DailyStreak,
	}, nil
}
