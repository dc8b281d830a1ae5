package user

import "time"

type CreateUserRequest struct {
	ClerkID        string `json:"clerkId"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Role           Role   `json:"role,omitempty"`
}

type UpdateProfileRequest struct {
	Username       *string `json:"username,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
	// Base64 payload; when present it is stored through the media
	// collaborator and wins over ProfilePicture.
	ProfilePhoto *string `json:"profilePhoto,omitempty"`
}

type CheckInResponse struct {
	StreakCount int       `json:"streakCount"`
	LastLogin   time.Time `json:"lastLogin"`
}
