package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitQuestAPI/internal/types/message"
	"fitQuestAPI/internal/types/post"
	"fitQuestAPI/internal/types/trainer"
	modelUser "fitQuestAPI/internal/user"
	"fitQuestAPI/services"
	"fitQuestAPI/tests/helpers"
)

func TestFollowAndFeed(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	userService := services.NewUserService(pool, mediaStore)
	socialService := services.NewSocialService(pool)
	postService := services.NewPostService(pool, mediaStore)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	alexClerkID := "user_test_alex_" + suffix
	alex, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  alexClerkID,
		Email:    fmt.Sprintf("test.alex.%s@example.com", suffix),
		Username: "test-alex-" + suffix,
	})
	require.NoError(t, err)

	samClerkID := "user_test_sam_" + suffix
	sam, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  samClerkID,
		Email:    fmt.Sprintf("test.sam.%s@example.com", suffix),
		Username: "test-sam-" + suffix,
	})
	require.NoError(t, err)

	t.Log("Alex follows Sam")
	require.NoError(t, socialService.Follow(ctx, alexClerkID, sam.Username))

	err = socialService.Follow(ctx, alexClerkID, sam.Username)
	assert.ErrorIs(t, err, services.ErrAlreadyFollowing)

	err = socialService.Follow(ctx, alexClerkID, alex.Username)
	assert.ErrorIs(t, err, services.ErrSelfFollow)

	following, err := socialService.Following(ctx, alex.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, sam.Username, following[0].Username)

	followers, err := socialService.Followers(ctx, sam.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, alex.Username, followers[0].Username)

	t.Log("Sam posts and the post shows in Alex's feed")
	photo := base64.StdEncoding.EncodeToString([]byte("sam-progress-pic"))
	created, err := postService.CreatePost(ctx, samClerkID, &post.CreatePostRequest{
		Caption: "leg day",
		Photo:   photo,
	})
	require.NoError(t, err)

	feed, err := postService.FollowingFeed(ctx, alexClerkID, 10)
	require.NoError(t, err)
	require.NotEmpty(t, feed)
	assert.Equal(t, created.ID, feed[0].ID)
	assert.Equal(t, sam.Username, feed[0].Username)

	// Sam follows nobody, so Sam's own feed is empty.
	samFeed, err := postService.FollowingFeed(ctx, samClerkID, 10)
	require.NoError(t, err)
	assert.Empty(t, samFeed)

	t.Log("Alex unfollows Sam")
	require.NoError(t, socialService.Unfollow(ctx, alexClerkID, sam.ID))
	err = socialService.Unfollow(ctx, alexClerkID, sam.ID)
	assert.ErrorIs(t, err, services.ErrNotFollowing)

	feed, err = postService.FollowingFeed(ctx, alexClerkID, 10)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestTrainerPurchaseDiscount(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	mediaStore := helpers.NewFakeMediaStore()
	userService := services.NewUserService(pool, mediaStore)
	trainerService := services.NewTrainerService(pool)
	messageService := services.NewMessageService(pool)

	ctx := context.Background()
	suffix := time.Now().Format("20060102150405")

	adminClerkID := "user_test_tadmin_" + suffix
	admin, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  adminClerkID,
		Email:    fmt.Sprintf("test.tadmin.%s@example.com", suffix),
		Username: "test-tadmin-" + suffix,
	})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET role = 'admin' WHERE id = $1`, admin.ID)
	require.NoError(t, err)

	buyerClerkID := "user_test_buyer_" + suffix
	buyer, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  buyerClerkID,
		Email:    fmt.Sprintf("test.buyer.%s@example.com", suffix),
		Username: "test-buyer-" + suffix,
	})
	require.NoError(t, err)

	created, err := trainerService.CreateTrainer(ctx, adminClerkID, &trainer.UpsertTrainerRequest{
		Name:           "test-coach-" + suffix,
		Specialization: "strength",
		Experience:     5,
		Availability:   "weekdays",
		Amount:         100,
	})
	require.NoError(t, err)

	t.Log("Messaging requires a purchased trainer")
	_, err = messageService.SendMessage(ctx, buyerClerkID, created.ID,
		&message.SendMessageRequest{Body: "hello"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	t.Log("A balance below the discount still buys, at full price")
	_, err = pool.Exec(ctx, `UPDATE users SET coins = 5 WHERE id = $1`, buyer.ID)
	require.NoError(t, err)

	result, err := trainerService.PurchaseTrainer(ctx, buyerClerkID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, result.OriginalPrice)
	assert.Equal(t, 0, result.Discount)
	assert.Equal(t, 100, result.FinalPrice)
	assert.Equal(t, 5, result.CoinsRemaining)

	purchased, err := userService.GetUserByClerkID(ctx, buyerClerkID)
	require.NoError(t, err)
	assert.True(t, purchased.TrainerPurchased)
	assert.Equal(t, 5, purchased.Coins)

	t.Log("A covering balance funds the 10 percent discount")
	saverClerkID := "user_test_saver_" + suffix
	saver, err := userService.CreateUser(ctx, &modelUser.CreateUserRequest{
		ClerkID:  saverClerkID,
		Email:    fmt.Sprintf("test.saver.%s@example.com", suffix),
		Username: "test-saver-" + suffix,
	})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE users SET coins = 90 WHERE id = $1`, saver.ID)
	require.NoError(t, err)

	result, err = trainerService.PurchaseTrainer(ctx, saverClerkID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, result.OriginalPrice)
	assert.Equal(t, 10, result.Discount)
	assert.Equal(t, 90, result.FinalPrice)
	assert.Equal(t, 80, result.CoinsRemaining)

	discounted, err := userService.GetUserByClerkID(ctx, saverClerkID)
	require.NoError(t, err)
	assert.True(t, discounted.TrainerPurchased)
	assert.Equal(t, 80, discounted.Coins)

	t.Log("Messaging works after the purchase")
	sent, err := messageService.SendMessage(ctx, buyerClerkID, created.ID,
		&message.SendMessageRequest{Body: "How often should I deadlift?"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, sent.TrainerID)

	thread, err := messageService.Thread(ctx, buyerClerkID, created.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.Equal(t, "How often should I deadlift?", thread[0].Body)

	require.NoError(t, trainerService.DeleteTrainer(ctx, adminClerkID, created.ID))
	_, err = trainerService.GetTrainer(ctx, created.ID)
	assert.ErrorIs(t, err, services.ErrTrainerNotFound)
}
