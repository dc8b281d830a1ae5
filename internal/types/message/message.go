package message

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SenderID  uuid.UUID `json:"senderId" db:"sender_id"`
	TrainerID uuid.UUID `json:"trainerId" db:"trainer_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type SendMessageRequest struct {
	Body string `json:"body"`
}
