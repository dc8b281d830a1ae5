package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/notification"
)

// PushProvider delivers push notifications to device tokens. The FCM
// client satisfies this; tests swap in a fake.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

// SetPushProvider wires the delivery backend. Without one registered,
// notifications are recorded but never pushed.
func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

func (s *NotificationService) RegisterDeviceToken(ctx context.Context, clerkID string, req *notification.RegisterTokenRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return fmt.Errorf("%w: token is required", ErrValidation)
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (id, user_id, token, platform)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token) DO UPDATE SET user_id = $2, platform = $4`,
		uuid.New(), userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

func (s *NotificationService) UnregisterDeviceToken(ctx context.Context, clerkID, token string) error {
	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to unregister device token: %w", err)
	}
	return nil
}

func (s *NotificationService) tokensForUser(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device tokens: %w", err)
	}
	defer rows.Close()

	tokens := []notification.DeviceToken{}
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}
	return tokens, nil
}

// NotifyChallengeCompleted pushes a completion message to the user's
// devices. Delivery is best effort: failures are logged, never
// surfaced to the caller, so a push outage cannot fail a reward.
func (s *NotificationService) NotifyChallengeCompleted(ctx context.Context, userID uuid.UUID, c *challenge.Challenge) {
	if s.push == nil {
		return
	}

	tokens, err := s.tokensForUser(ctx, userID)
	if err != nil {
		log.Printf("NotifyChallengeCompleted: %v", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := "Challenge complete!"
	body := fmt.Sprintf("You finished %s and earned %d coins.", c.Name, c.RewardCoins)
	data := map[string]any{
		"type":        "challenge_completed",
		"challengeId": c.ID.String(),
		"reward":      c.RewardCoins,
	}

	if err := s.push.SendPush(ctx, tokens, title, body, data); err != nil {
		log.Printf("NotifyChallengeCompleted: push to user %s: %v", userID, err)
	}
}
