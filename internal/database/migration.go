package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY,
				clerk_id VARCHAR(255) UNIQUE NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				username VARCHAR(255) UNIQUE NOT NULL,
				profile_picture TEXT NOT NULL DEFAULT '',
				role VARCHAR(16) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'trainer', 'admin')),
				coins INT NOT NULL DEFAULT 0 CHECK (coins >= 0),
				streak_count INT NOT NULL DEFAULT 0 CHECK (streak_count >= 0),
				last_login TIMESTAMP WITH TIME ZONE,
				trainer_purchased BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"challenges", `
			CREATE TABLE IF NOT EXISTS challenges (
				id UUID PRIMARY KEY,
				name VARCHAR(100) NOT NULL,
				description TEXT NOT NULL,
				reward_coins INT NOT NULL CHECK (reward_coins >= 0),
				streak_required INT NOT NULL CHECK (streak_required >= 0),
				duration_days INT NOT NULL CHECK (duration_days >= 1),
				media_url TEXT NOT NULL DEFAULT '/default-media.jpg',
				status VARCHAR(16) NOT NULL DEFAULT 'active' CHECK (status IN ('upcoming', 'active', 'completed')),
				start_date TIMESTAMP WITH TIME ZONE NOT NULL,
				end_date TIMESTAMP WITH TIME ZONE NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CHECK (end_date > start_date)
			)
		`},
		{"challenge_participants", `
			CREATE TABLE IF NOT EXISTS challenge_participants (
				id UUID PRIMARY KEY,
				challenge_id UUID NOT NULL REFERENCES challenges(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				daily_streak INT NOT NULL DEFAULT 0 CHECK (daily_streak >= 0),
				last_upload TIMESTAMP WITH TIME ZONE,
				last_upload_day DATE,
				completed BOOLEAN NOT NULL DEFAULT FALSE,
				coins_earned INT NOT NULL DEFAULT 0 CHECK (coins_earned >= 0),
				joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				UNIQUE (challenge_id, user_id)
			)
		`},
		{"completed_challenges", `
			CREATE TABLE IF NOT EXISTS completed_challenges (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				challenge_id UUID NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				reward INT NOT NULL DEFAULT 0
			)
		`},
		{"achievements", `
			CREATE TABLE IF NOT EXISTS achievements (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				challenge_id UUID NOT NULL,
				name VARCHAR(100) NOT NULL,
				reward_coins INT NOT NULL DEFAULT 0,
				completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"posts", `
			CREATE TABLE IF NOT EXISTS posts (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				challenge_id UUID REFERENCES challenges(id) ON DELETE SET NULL,
				caption VARCHAR(300) NOT NULL DEFAULT '',
				media_url TEXT NOT NULL,
				media_type VARCHAR(16) NOT NULL DEFAULT 'photo' CHECK (media_type IN ('photo')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"follows", `
			CREATE TABLE IF NOT EXISTS follows (
				follower_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				followed_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (follower_id, followed_id),
				CHECK (follower_id <> followed_id)
			)
		`},
		{"personal_goals", `
			CREATE TABLE IF NOT EXISTS personal_goals (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				target_date TIMESTAMP WITH TIME ZONE,
				status VARCHAR(32) NOT NULL DEFAULT 'not started',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"trainers", `
			CREATE TABLE IF NOT EXISTS trainers (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				specialization VARCHAR(255) NOT NULL,
				experience INT NOT NULL DEFAULT 0,
				availability VARCHAR(255) NOT NULL DEFAULT '',
				bio TEXT NOT NULL DEFAULT '',
				profile_image TEXT NOT NULL DEFAULT '',
				contact_info VARCHAR(255) NOT NULL DEFAULT '',
				amount INT NOT NULL DEFAULT 0 CHECK (amount >= 0),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"messages", `
			CREATE TABLE IF NOT EXISTS messages (
				id UUID PRIMARY KEY,
				sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				trainer_id UUID NOT NULL REFERENCES trainers(id) ON DELETE CASCADE,
				body TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"device_tokens", `
			CREATE TABLE IF NOT EXISTS device_tokens (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				token TEXT UNIQUE NOT NULL,
				platform VARCHAR(16) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
		`},
		{"idx_participants_user", `
			CREATE INDEX IF NOT EXISTS idx_participants_user ON challenge_participants(user_id)
		`},
		{"idx_challenges_status_end", `
			CREATE INDEX IF NOT EXISTS idx_challenges_status_end ON challenges(status, end_date)
		`},
		{"idx_completed_challenge", `
			CREATE INDEX IF NOT EXISTS idx_completed_challenge ON completed_challenges(challenge_id, user_id)
		`},
		{"idx_posts_user_created", `
			CREATE INDEX IF NOT EXISTS idx_posts_user_created ON posts(user_id, created_at DESC)
		`},
		{"idx_messages_thread", `
			CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(trainer_id, sender_id, created_at)
		`},
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}

	return nil
}
