package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/message"
)

type MessageService struct {
	db *pgxpool.Pool
}

func NewMessageService(db *pgxpool.Pool) *MessageService {
	return &MessageService{db: db}
}

// SendMessage appends a message from the caller to a trainer thread.
// The caller must own a trainer purchase before messaging.
func (s *MessageService) SendMessage(ctx context.Context, clerkID string, trainerID uuid.UUID, req *message.SendMessageRequest) (*message.Message, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("%w: message body is required", ErrValidation)
	}

	var senderID uuid.UUID
	var purchased bool
	err := s.db.QueryRow(ctx,
		`SELECT id, trainer_purchased FROM users WHERE clerk_id = $1`, clerkID).
		Scan(&senderID, &purchased)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !purchased {
		return nil, ErrForbidden
	}

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM trainers WHERE id = $1)`, trainerID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check trainer: %w", err)
	}
	if !exists {
		return nil, ErrTrainerNotFound
	}

	var m message.Message
	err = s.db.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, trainer_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender_id, trainer_id, body, created_at`,
		uuid.New(), senderID, trainerID, req.Body).
		Scan(&m.ID, &m.SenderID, &m.TrainerID, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &m, nil
}

// Thread returns the caller's messages with one trainer, oldest first.
func (s *MessageService) Thread(ctx context.Context, clerkID string, trainerID uuid.UUID) ([]message.Message, error) {
	senderID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, sender_id, trainer_id, body, created_at
		FROM messages
		WHERE sender_id = $1 AND trainer_id = $2
		ORDER BY created_at ASC`, senderID, trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []message.Message{}
	for rows.Next() {
		var m message.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.TrainerID, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}
