package trainer

import (
	"time"

	"github.com/google/uuid"
)

type Trainer struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Specialization string    `json:"specialization" db:"specialization"`
	Experience     int       `json:"experience" db:"experience"`
	Availability   string    `json:"availability" db:"availability"`
	Bio            string    `json:"bio,omitempty" db:"bio"`
	ProfileImage   string    `json:"profileImage,omitempty" db:"profile_image"`
	ContactInfo    string    `json:"contactInfo,omitempty" db:"contact_info"`
	Amount         int       `json:"amount" db:"amount"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

type UpsertTrainerRequest struct {
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Availability   string `json:"availability"`
	Bio            string `json:"bio,omitempty"`
	ProfileImage   string `json:"profileImage,omitempty"`
	ContactInfo    string `json:"contactInfo,omitempty"`
	Amount         int    `json:"amount"`
}

// PurchaseResult reports the coin-discounted trainer purchase outcome.
type PurchaseResult struct {
	TrainerID      uuid.UUID `json:"trainerId"`
	OriginalPrice  int       `json:"originalPrice"`
	Discount       int       `json:"discount"`
	FinalPrice     int       `json:"finalPrice"`
	CoinsRemaining int       `json:"coinsRemaining"`
}
