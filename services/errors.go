package services

import "errors"

// Failure kinds surfaced to the HTTP edge. Handlers map these to
// status codes; everything else is a 500.
var (
	ErrValidation           = errors.New("invalid input")
	ErrForbidden            = errors.New("operation not allowed for this role")
	ErrUserNotFound         = errors.New("user not found")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrTrainerNotFound      = errors.New("trainer not found")
	ErrGoalNotFound         = errors.New("goal not found")
	ErrAlreadyJoined        = errors.New("user already joined this challenge")
	ErrChallengeExpired     = errors.New("challenge has already ended")
	ErrChallengeInactive    = errors.New("challenge is not active")
	ErrStreakTooLow         = errors.New("streak too low to join this challenge")
	ErrNotParticipant       = errors.New("user is not a participant in this challenge")
	ErrAlreadyUploadedToday = errors.New("photo already uploaded for today")
	ErrMediaUpload          = errors.New("media upload failed")
	ErrAlreadyFollowing     = errors.New("already following this user")
	ErrNotFollowing         = errors.New("not following this user")
	ErrSelfFollow           = errors.New("cannot follow yourself")
	ErrInvalidTransition    = errors.New("challenge status cannot move backward")
)
