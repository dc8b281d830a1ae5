package integration

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitQuestAPI/handlers"
	"fitQuestAPI/services"
	"fitQuestAPI/tests/helpers"
)

// TestClerkWebhookLifecycle drives the user mirror through the three
// Clerk events the API handles.
func TestClerkWebhookLifecycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool, helpers.NewFakeMediaStore())
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	ctx := context.Background()
	clerkID := "user_test_wh_" + time.Now().Format("20060102150405")

	t.Log("user.created creates the local row")
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(helpers.MockClerkWebhookPayload("user.created", clerkID)))
	rr := httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	created, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "test.user@example.com", created.Email)
	assert.Equal(t, "testuser_"+clerkID, created.Username)

	t.Log("user.updated changes the mirrored fields")
	req = httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(helpers.MockClerkWebhookPayload("user.updated", clerkID)))
	rr = httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	updated, err := userService.GetUserByClerkID(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, "updateduser_"+clerkID, updated.Username)
	assert.Equal(t, "https://example.com/new-image.jpg", updated.ProfilePicture)

	t.Log("user.deleted removes the row")
	req = httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(helpers.MockClerkWebhookPayload("user.deleted", clerkID)))
	rr = httptest.NewRecorder()
	webhookHandler.HandleClerkWebhook(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	_, err = userService.GetUserByClerkID(ctx, clerkID)
	assert.Error(t, err)
}

func TestClerkWebhookRejectsBadSignature(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool, helpers.NewFakeMediaStore())
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "whsec_test_secret")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk",
		bytes.NewReader(helpers.MockClerkWebhookPayload("user.created", "user_test_sig")))
	req.Header.Set("svix-id", "msg_123")
	req.Header.Set("svix-timestamp", "1700000000")
	req.Header.Set("svix-signature", "v1,definitelywrong")
	rr := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
