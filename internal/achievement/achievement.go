package achievement

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is one entry of a user's append-only achievement log,
// written when a challenge is completed.
type Achievement struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	ChallengeID uuid.UUID `json:"challengeId"`
	Name        string    `json:"name"`
	RewardCoins int       `json:"rewardCoins"`
	CompletedAt time.Time `json:"completionDate"`
}
