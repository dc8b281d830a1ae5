package challenge

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is a legal
// forward transition. The order is upcoming -> active -> completed;
// completed is terminal. Staying in place is allowed so that redundant
// finalization is a no-op rather than an error.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusUpcoming:
		return next == StatusActive || next == StatusCompleted
	case StatusActive:
		return next == StatusCompleted
	}
	return false
}

type Challenge struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	RewardCoins    int       `json:"rewardCoins" db:"reward_coins"`
	StreakRequired int       `json:"streakRequired" db:"streak_required"`
	DurationDays   int       `json:"duration" db:"duration_days"`
	MediaURL       string    `json:"challengeMedia" db:"media_url"`
	Status         Status    `json:"status" db:"status"`
	StartDate      time.Time `json:"startDate" db:"start_date"`
	EndDate        time.Time `json:"endDate" db:"end_date"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// RemainingDays is the whole number of days until the end date, never
// negative.
func (c *Challenge) RemainingDays(now time.Time) int {
	if !now.Before(c.EndDate) {
		return 0
	}
	return int((c.EndDate.Sub(now) + 24*time.Hour - 1) / (24 * time.Hour))
}

type Participant struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ChallengeID uuid.UUID  `json:"challengeId" db:"challenge_id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	DailyStreak int        `json:"dailyStreak" db:"daily_streak"`
	LastUpload  *time.Time `json:"lastUpload,omitempty" db:"last_upload"`
	Completed   bool       `json:"hasCompletedChallenge" db:"completed"`
	CoinsEarned int        `json:"coinsEarned" db:"coins_earned"`
	JoinedAt    time.Time  `json:"joinedAt" db:"joined_at"`
}

// UploadedOn reports whether the participant already submitted a proof
// on the calendar day containing t. Days are compared by local date
// components, not as a rolling 24 hour window.
func (p *Participant) UploadedOn(t time.Time) bool {
	if p.LastUpload == nil {
		return false
	}
	return SameCalendarDay(*p.LastUpload, t)
}

// QualifiesForReward reports whether the participant has earned the
// challenge reward at time now: the challenge period is over and the
// streak covered every required day. Already-completed participants do
// not qualify again.
func (p *Participant) QualifiesForReward(c *Challenge, now time.Time) bool {
	if p.Completed {
		return false
	}
	return !now.Before(c.EndDate) && p.DailyStreak >= c.DurationDays
}

// SameCalendarDay compares the local date components of a and b.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// LocalDay truncates t to its local calendar day.
func LocalDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

type CreateChallengeRequest struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	RewardCoins    int       `json:"rewardCoins"`
	StreakRequired int       `json:"streakRequired"`
	DurationDays   int       `json:"duration"`
	MediaURL       string    `json:"challengeMedia"`
	Status         Status    `json:"status"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// Validate enforces the creation constraints: required text fields,
// rewardCoins > 0, streakRequired >= 0, duration >= 1, a known status
// and endDate strictly after startDate.
func (r *CreateChallengeRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Description) == "" {
		return errors.New("name and description are required")
	}
	if r.RewardCoins <= 0 {
		return errors.New("rewardCoins must be a positive number")
	}
	if r.StreakRequired < 0 {
		return errors.New("streakRequired must not be negative")
	}
	if r.DurationDays < 1 {
		return errors.New("duration must be at least one day")
	}
	if !r.Status.Valid() {
		return errors.New("status must be one of upcoming, active, completed")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return errors.New("startDate and endDate are required")
	}
	if !r.EndDate.After(r.StartDate) {
		return errors.New("endDate must be after startDate")
	}
	return nil
}

type UpdateChallengeRequest struct {
	Name           *string    `json:"name,omitempty"`
	Description    *string    `json:"description,omitempty"`
	RewardCoins    *int       `json:"rewardCoins,omitempty"`
	StreakRequired *int       `json:"streakRequired,omitempty"`
	DurationDays   *int       `json:"duration,omitempty"`
	MediaURL       *string    `json:"challengeMedia,omitempty"`
	Status         *Status    `json:"status,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
}

// ParticipantPhoto is the per-participant summary returned with a
// challenge detail view.
type ParticipantPhoto struct {
	Username string `json:"username"`
	PhotoURL string `json:"photoUrl"`
}

type ChallengeDetails struct {
	Challenge     Challenge          `json:"challenge"`
	RemainingDays int                `json:"remainingDays"`
	Participants  []ParticipantPhoto `json:"participants"`
}

type UploadProofRequest struct {
	Photo   string `json:"photo"`
	Caption string `json:"caption,omitempty"`
}

type UploadProofResponse struct {
	Message      string    `json:"message"`
	PhotoURL     string    `json:"photoUrl"`
	CoinsAwarded int       `json:"coinsAwarded"`
	PostID       uuid.UUID `json:"postId"`
	DailyStreak  int       `json:"dailyStreak"`
}
