package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusUpcoming.CanTransition(StatusActive))
	assert.True(t, StatusUpcoming.CanTransition(StatusCompleted))
	assert.True(t, StatusActive.CanTransition(StatusCompleted))

	// completed is terminal
	assert.False(t, StatusCompleted.CanTransition(StatusActive))
	assert.False(t, StatusCompleted.CanTransition(StatusUpcoming))

	// never backward
	assert.False(t, StatusActive.CanTransition(StatusUpcoming))

	// self transitions are no-ops, not errors
	assert.True(t, StatusActive.CanTransition(StatusActive))
	assert.True(t, StatusCompleted.CanTransition(StatusCompleted))
}

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2025, 3, 10, 0, 30, 0, 0, time.Local)
	night := time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)
	nextDay := time.Date(2025, 3, 11, 0, 1, 0, 0, time.Local)

	assert.True(t, SameCalendarDay(morning, night))
	// less than 24h apart but different calendar days
	assert.False(t, SameCalendarDay(night, nextDay))
	// more than 24h apart, same day-of-month a month later
	assert.False(t, SameCalendarDay(morning, morning.AddDate(0, 1, 0)))
}

func TestParticipantUploadedOn(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	p := &Participant{}
	assert.False(t, p.UploadedOn(now), "no prior upload")

	earlier := now.Add(-2 * time.Hour)
	p.LastUpload = &earlier
	assert.True(t, p.UploadedOn(now))

	yesterday := now.AddDate(0, 0, -1)
	p.LastUpload = &yesterday
	assert.False(t, p.UploadedOn(now))
}

func TestQualifiesForReward(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	c := &Challenge{
		DurationDays: 3,
		RewardCoins:  50,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 3),
	}

	p := &Participant{DailyStreak: 3}
	assert.False(t, p.QualifiesForReward(c, c.EndDate.Add(-time.Hour)), "before end date")
	assert.True(t, p.QualifiesForReward(c, c.EndDate), "at end date with full streak")
	assert.True(t, p.QualifiesForReward(c, c.EndDate.Add(48*time.Hour)))

	short := &Participant{DailyStreak: 2}
	assert.False(t, short.QualifiesForReward(c, c.EndDate.Add(time.Hour)), "streak below duration")

	done := &Participant{DailyStreak: 5, Completed: true}
	assert.False(t, done.QualifiesForReward(c, c.EndDate.Add(time.Hour)), "completion is once only")
}

func TestCreateChallengeRequestValidate(t *testing.T) {
	start := time.Now()
	valid := CreateChallengeRequest{
		Name:           "30 Day Plank",
		Description:    "Hold a plank every day",
		RewardCoins:    100,
		StreakRequired: 0,
		DurationDays:   30,
		Status:         StatusActive,
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 30),
	}
	assert.NoError(t, valid.Validate())

	cases := map[string]func(r *CreateChallengeRequest){
		"missing name":          func(r *CreateChallengeRequest) { r.Name = " " },
		"missing description":   func(r *CreateChallengeRequest) { r.Description = "" },
		"zero reward":           func(r *CreateChallengeRequest) { r.RewardCoins = 0 },
		"negative streak":       func(r *CreateChallengeRequest) { r.StreakRequired = -1 },
		"zero duration":         func(r *CreateChallengeRequest) { r.DurationDays = 0 },
		"unknown status":        func(r *CreateChallengeRequest) { r.Status = "paused" },
		"end before start":      func(r *CreateChallengeRequest) { r.EndDate = r.StartDate.AddDate(0, 0, -1) },
		"end equal to start":    func(r *CreateChallengeRequest) { r.EndDate = r.StartDate },
		"zero start date":       func(r *CreateChallengeRequest) { r.StartDate = time.Time{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestRemainingDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)
	c := &Challenge{EndDate: now.AddDate(0, 0, 3)}
	assert.Equal(t, 3, c.RemainingDays(now))

	c.EndDate = now.Add(-time.Hour)
	assert.Equal(t, 0, c.RemainingDays(now), "past end date never negative")

	c.EndDate = now.Add(time.Hour)
	assert.Equal(t, 1, c.RemainingDays(now), "partial day rounds up")
}
