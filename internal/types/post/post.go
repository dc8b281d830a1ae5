package post

import (
	"time"

	"github.com/google/uuid"
)

type MediaType string

const MediaPhoto MediaType = "photo"

type Post struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	ChallengeID *uuid.UUID `json:"challengeId,omitempty" db:"challenge_id"`
	Caption     string     `json:"caption,omitempty" db:"caption"`
	MediaURL    string     `json:"mediaUrl" db:"media_url"`
	MediaType   MediaType  `json:"mediaType" db:"media_type"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}

// FeedEntry is a post joined with its author's public fields.
type FeedEntry struct {
	Post
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type CreatePostRequest struct {
	Caption string `json:"caption,omitempty"`
	Photo   string `json:"photo"`
}
