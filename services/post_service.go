package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/media"
	"fitQuestAPI/internal/types/post"
)

type PostService struct {
	db    *pgxpool.Pool
	media media.Store
}

func NewPostService(db *pgxpool.Pool, mediaStore media.Store) *PostService {
	return &PostService{db: db, media: mediaStore}
}

// CreatePost stores a standalone photo post (not tied to a challenge).
func (s *PostService) CreatePost(ctx context.Context, clerkID string, req *post.CreatePostRequest) (*post.Post, error) {
	if req.Photo == "" {
		return nil, fmt.Errorf("%w: photo is required", ErrValidation)
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	payload, contentType, err := media.DecodePhoto(req.Photo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	mediaURL, _, err := s.media.Upload(ctx, payload, contentType, "posts")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}

	p := &post.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Caption:   req.Caption,
		MediaURL:  mediaURL,
		MediaType: post.MediaPhoto,
		CreatedAt: time.Now(),
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO posts (id, user_id, challenge_id, caption, media_url, media_type, created_at)
		VALUES ($1, $2, NULL, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Caption, p.MediaURL, p.MediaType, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return p, nil
}

// FollowingFeed returns posts authored by users the caller follows,
// newest first.
func (s *PostService) FollowingFeed(ctx context.Context, clerkID string, limit int) ([]post.FeedEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	userID, err := resolveUserID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.user_id, p.challenge_id, p.caption, p.media_url, p.media_type, p.created_at,
		       u.username, u.profile_picture
		FROM posts p
		JOIN follows f ON f.followed_id = p.user_id
		JOIN users u ON u.id = p.user_id
		WHERE f.follower_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	feed := []post.FeedEntry{}
	for rows.Next() {
		var e post.FeedEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.ChallengeID, &e.Caption, &e.MediaURL,
			&e.MediaType, &e.CreatedAt, &e.Username, &e.ProfilePicture)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed entry: %w", err)
		}
		feed = append(feed, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed: %w", err)
	}
	return feed, nil
}

// UserPosts lists a user's own posts, newest first.
func (s *PostService) UserPosts(ctx context.Context, userID uuid.UUID) ([]post.Post, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, challenge_id, caption, media_url, media_type, created_at
		FROM posts
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := []post.Post{}
	for rows.Next() {
		var p post.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.ChallengeID, &p.Caption, &p.MediaURL, &p.MediaType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return posts, nil
}
