package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitQuestAPI/internal/types/challenge"
	modelUser "fitQuestAPI/internal/user"
	"fitQuestAPI/services"
	"fitQuestAPI/tests/helpers"
)

// TestChallengeLifecycle walks the whole loop: an admin creates a
// challenge, a user joins, uploads a daily proof, the duplicate upload
// is rejected, the expired challenge gets finalized, and the reward
// and leaderboard reflect the completion.
func TestChallengeLifecycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool, mediaStore)
	challengeService := services.NewChallengeService(pool, notificationService)
	uploadService := services.NewUploadService(pool, mediaStore, notificationService)
	leaderboardService := services.NewLeaderboardService(pool)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	adminClerkID := "user_test_admin_" + suffix
	admin, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  adminClerkID,
		Email:    fmt.Sprintf("test.admin.%s@example.com", suffix),
		Username: "test-admin-" + suffix,
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)

	memberClerkID := "user_test_member_" + suffix
	member, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  memberClerkID,
		Email:    fmt.Sprintf("test.member.%s@example.com", suffix),
		Username: "test-member-" + suffix,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, member.Coins)

	t.Log("Admin creates a one-day challenge")
	created, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:           "test-plank-" + suffix,
		Description:    "Hold a plank every day",
		RewardCoins:    50,
		StreakRequired: 0,
		DurationDays:   1,
		Status:         challenge.StatusActive,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusActive, created.Status)
	assert.Equal(t, "/default-media.jpg", created.MediaURL)

	t.Log("Non-admin cannot create challenges")
	_, err = challengeService.CreateChallenge(ctx, memberClerkID, &challenge.CreateChallengeRequest{
		Name:         "test-rogue-" + suffix,
		Description:  "nope",
		RewardCoins:  10,
		DurationDays: 1,
		Status:       challenge.StatusActive,
		StartDate:    time.Now(),
		EndDate:      time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, services.ErrForbidden)

	t.Log("Member joins the challenge")
	require.NoError(t, challengeService.JoinChallenge(ctx, memberClerkID, created.ID))

	err = challengeService.JoinChallenge(ctx, memberClerkID, created.ID)
	assert.ErrorIs(t, err, services.ErrAlreadyJoined)

	details, err := challengeService.GetChallengeDetails(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.RemainingDays)
	require.Len(t, details.Participants, 1)
	assert.Equal(t, member.Username, details.Participants[0].Username)

	t.Log("Member uploads the daily proof")
	photo := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	resp, err := uploadService.SubmitProof(ctx, memberClerkID, created.ID, &challenge.UploadProofRequest{
		Photo:   photo,
		Caption: "day one done",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.DailyStreak)
	assert.Equal(t, 0, resp.CoinsAwarded, "reward should not land before the end date")
	assert.NotEmpty(t, resp.PhotoURL)

	t.Log("Second upload on the same day is rejected")
	_, err = uploadService.SubmitProof(ctx, memberClerkID, created.ID, &challenge.UploadProofRequest{Photo: photo})
	assert.ErrorIs(t, err, services.ErrAlreadyUploadedToday)

	t.Log("Challenge expires and the sweep finalizes it")
	_, err = pool.Exec(ctx,
		`UPDATE challenges SET end_date = NOW() - INTERVAL '1 hour' WHERE id = $1`, created.ID)
	require.NoError(t, err)

	finalized, err := challengeService.FinalizeExpired(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, finalized, 1)

	refreshed, err := challengeService.GetChallenge(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusCompleted, refreshed.Status)

	t.Log("Reward landed exactly once")
	updatedMember, err := userService.GetUserByClerkID(ctx, memberClerkID)
	require.NoError(t, err)
	assert.Equal(t, 50, updatedMember.Coins)

	// A second sweep must not double-pay.
	_, err = challengeService.FinalizeExpired(ctx)
	require.NoError(t, err)
	again, err := userService.GetUserByClerkID(ctx, memberClerkID)
	require.NoError(t, err)
	assert.Equal(t, 50, again.Coins)

	completed, err := userService.GetCompletedChallenges(ctx, memberClerkID)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, created.ID, completed[0].ChallengeID)
	assert.Equal(t, 50, completed[0].Reward)

	achievements, err := userService.GetAchievements(ctx, memberClerkID)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, created.Name, achievements[0].Name)

	t.Log("Leaderboard ranks the member")
	entries, err := leaderboardService.ChallengeLeaderboard(ctx, created.ID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, updatedMember.Username, entries[0].Username)
	assert.Equal(t, 1, entries[0].CompletionCount)

	t.Log("Completed challenge no longer counts as joined")
	joined, err := userService.JoinedChallenges(ctx, memberClerkID)
	require.NoError(t, err)
	assert.NotContains(t, joined, created.ID)
}

func TestJoinExpiredChallenge(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool, mediaStore)
	challengeService := services.NewChallengeService(pool, notificationService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000")

	adminClerkID := "user_test_admin2_" + suffix
	admin, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  adminClerkID,
		Email:    fmt.Sprintf("test.admin2.%s@example.com", suffix),
		Username: "test-admin2-" + suffix,
	})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)

	created, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:         "test-expired-" + suffix,
		Description:  "already over",
		RewardCoins:  10,
		DurationDays: 1,
		Status:       challenge.StatusActive,
		StartDate:    time.Now().Add(-48 * time.Hour),
		EndDate:      time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`UPDATE challenges SET end_date = NOW() - INTERVAL '1 hour' WHERE id = $1`, created.ID)
	require.NoError(t, err)

	err = challengeService.JoinChallenge(ctx, adminClerkID, created.ID)
	assert.ErrorIs(t, err, services.ErrChallengeExpired)
}

// TestUploadAwardsOnFinalDay covers the reward landing through the
// upload path itself: a submission arriving after the end date with a
// full streak pays out immediately instead of waiting for the sweep.
func TestUploadAwardsOnFinalDay(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool, mediaStore)
	challengeService := services.NewChallengeService(pool, notificationService)
	uploadService := services.NewUploadService(pool, mediaStore, notificationService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.00")

	adminClerkID := "user_test_admin3_" + suffix
	admin, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  adminClerkID,
		Email:    fmt.Sprintf("test.admin3.%s@example.com", suffix),
		Username: "test-admin3-" + suffix,
	})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)

	runnerClerkID := "user_test_runner_" + suffix
	_, err = userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  runnerClerkID,
		Email:    fmt.Sprintf("test.runner.%s@example.com", suffix),
		Username: "test-runner-" + suffix,
	})
	require.NoError(t, err)

	created, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:         "test-finalday-" + suffix,
		Description:  "One proof wins it",
		RewardCoins:  40,
		DurationDays: 1,
		Status:       challenge.StatusActive,
		StartDate:    time.Now().Add(-2 * time.Hour),
		EndDate:      time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, challengeService.JoinChallenge(ctx, runnerClerkID, created.ID))

	// The period ends before the proof arrives; the challenge is
	// still marked active because no sweep has run yet.
	_, err = pool.Exec(ctx,
		`UPDATE challenges SET end_date = NOW() - INTERVAL '1 hour' WHERE id = $1`, created.ID)
	require.NoError(t, err)

	photo := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	resp, err := uploadService.SubmitProof(ctx, runnerClerkID, created.ID, &challenge.UploadProofRequest{
		Photo:   photo,
		Caption: "made it",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.DailyStreak)
	assert.Equal(t, 40, resp.CoinsAwarded, "full streak past the end date pays from the upload path")

	t.Log("The upload also finalized the challenge")
	refreshed, err := challengeService.GetChallenge(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusCompleted, refreshed.Status)

	paid, err := userService.GetUserByClerkID(ctx, runnerClerkID)
	require.NoError(t, err)
	assert.Equal(t, 40, paid.Coins)

	// The sweep running afterwards finds nothing left to pay.
	_, err = challengeService.FinalizeExpired(ctx)
	require.NoError(t, err)
	again, err := userService.GetUserByClerkID(ctx, runnerClerkID)
	require.NoError(t, err)
	assert.Equal(t, 40, again.Coins)

	completedList, err := userService.GetCompletedChallenges(ctx, runnerClerkID)
	require.NoError(t, err)
	require.Len(t, completedList, 1)
	assert.Equal(t, created.ID, completedList[0].ChallengeID)
}

func TestJoinStreakRequirement(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool, mediaStore)
	challengeService := services.NewChallengeService(pool, notificationService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000000")

	adminClerkID := "user_test_admin4_" + suffix
	admin, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  adminClerkID,
		Email:    fmt.Sprintf("test.admin4.%s@example.com", suffix),
		Username: "test-admin4-" + suffix,
	})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)

	noviceClerkID := "user_test_novice_" + suffix
	novice, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  noviceClerkID,
		Email:    fmt.Sprintf("test.novice.%s@example.com", suffix),
		Username: "test-novice-" + suffix,
	})
	require.NoError(t, err)

	created, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:           "test-veterans-" + suffix,
		Description:    "For regulars only",
		RewardCoins:    20,
		StreakRequired: 3,
		DurationDays:   2,
		Status:         challenge.StatusActive,
		StartDate:      time.Now().Add(-time.Hour),
		EndDate:        time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	t.Log("A fresh account cannot join a streak-gated challenge")
	err = challengeService.JoinChallenge(ctx, noviceClerkID, created.ID)
	assert.ErrorIs(t, err, services.ErrStreakTooLow)

	var rows int
	err = pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM challenge_participants
		WHERE challenge_id = $1 AND user_id = $2`, created.ID, novice.ID).Scan(&rows)
	require.NoError(t, err)
	assert.Equal(t, 0, rows, "a refused join must leave no participant row")

	t.Log("Enough login streak opens the gate")
	_, err = pool.Exec(ctx, `UPDATE users SET streak_count = 3 WHERE id = $1`, novice.ID)
	require.NoError(t, err)
	require.NoError(t, challengeService.JoinChallenge(ctx, noviceClerkID, created.ID))
}

func TestUploadGuards(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	notificationService := services.NewNotificationService(pool)
	userService := services.NewUserService(pool, mediaStore)
	challengeService := services.NewChallengeService(pool, notificationService)
	uploadService := services.NewUploadService(pool, mediaStore, notificationService)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.0000")

	adminClerkID := "user_test_admin5_" + suffix
	admin, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  adminClerkID,
		Email:    fmt.Sprintf("test.admin5.%s@example.com", suffix),
		Username: "test-admin5-" + suffix,
	})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)

	outsiderClerkID := "user_test_outsider_" + suffix
	_, err = userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  outsiderClerkID,
		Email:    fmt.Sprintf("test.outsider.%s@example.com", suffix),
		Username: "test-outsider-" + suffix,
	})
	require.NoError(t, err)

	photo := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))

	t.Log("Uploads to an announced challenge are rejected")
	upcoming, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:         "test-upcoming-" + suffix,
		Description:  "Starts tomorrow",
		RewardCoins:  10,
		DurationDays: 1,
		Status:       challenge.StatusUpcoming,
		StartDate:    time.Now().Add(24 * time.Hour),
		EndDate:      time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	_, err = uploadService.SubmitProof(ctx, outsiderClerkID, upcoming.ID, &challenge.UploadProofRequest{Photo: photo})
	assert.ErrorIs(t, err, services.ErrChallengeInactive)

	t.Log("An active flag does not open uploads before the start date")
	early, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:         "test-early-" + suffix,
		Description:  "Active but not started",
		RewardCoins:  10,
		DurationDays: 1,
		Status:       challenge.StatusActive,
		StartDate:    time.Now().Add(time.Hour),
		EndDate:      time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)

	_, err = uploadService.SubmitProof(ctx, outsiderClerkID, early.ID, &challenge.UploadProofRequest{Photo: photo})
	assert.ErrorIs(t, err, services.ErrChallengeInactive)

	t.Log("Non-participants cannot submit proofs")
	running, err := challengeService.CreateChallenge(ctx, adminClerkID, &challenge.CreateChallengeRequest{
		Name:         "test-running-" + suffix,
		Description:  "Already underway",
		RewardCoins:  10,
		DurationDays: 1,
		Status:       challenge.StatusActive,
		StartDate:    time.Now().Add(-time.Hour),
		EndDate:      time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = uploadService.SubmitProof(ctx, outsiderClerkID, running.ID, &challenge.UploadProofRequest{Photo: photo})
	assert.ErrorIs(t, err, services.ErrNotParticipant)
}
