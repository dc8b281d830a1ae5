package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID               uuid.UUID  `json:"id"`
	ClerkID          string     `json:"clerkId"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	ProfilePicture   string     `json:"profilePicture,omitempty"`
	Role             Role       `json:"role"`
	Coins            int        `json:"coins"`
	StreakCount      int        `json:"streakCount"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	TrainerPurchased bool       `json:"trainerPurchased"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// PublicProfile is the subset of a user other users may see.
type PublicProfile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

// CompletedChallenge is one entry of the append-only completion log.
type CompletedChallenge struct {
	ID          uuid.UUID `json:"id"`
	ChallengeID uuid.UUID `json:"challengeId"`
	CompletedAt time.Time `json:"completedAt"`
	Reward      int       `json:"reward"`
}
