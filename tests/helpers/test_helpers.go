package helpers

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/database"
)

// SetupTestDB connects to the test database and runs migrations. Tests
// are skipped when no database URL is configured so the unit suite can
// run standalone.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return pool
}

// CleanupTestDB cleans up test data
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE email LIKE 'test%@example.com'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	_, err = pool.Exec(ctx, "DELETE FROM challenges WHERE name LIKE 'test-%'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test challenges: %v", err)
	}
	pool.Close()
}

// GenerateMockClerkJWT generates a mock JWT token for testing
func GenerateMockClerkJWT(clerkID string) (string, error) {
	secretKey := []byte("test-secret-key-for-testing-only")

	claims := jwt.MapClaims{
		"sub": clerkID,
		"iss": "https://clerk.test",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour * 24).Unix(),
		"azp": "test-app-id",
		"sid": "sess_test123",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// MockClerkWebhookPayload creates a mock webhook payload
func MockClerkWebhookPayload(eventType string, clerkID string) []byte {
	payload := ""

	switch eventType {
	case "user.created":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Test",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com",
					"verification": {"status": "verified"}
				}],
				"username": "testuser_%s",
				"image_url": "https://example.com/image.jpg"
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, clerkID, eventType)

	case "user.updated":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"first_name": "Updated",
				"last_name": "User",
				"email_addresses": [{
					"id": "email_123",
					"email_address": "test.user@example.com",
					"verification": {"status": "verified"}
				}],
				"username": "updateduser_%s",
				"image_url": "https://example.com/new-image.jpg"
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, clerkID, eventType)

	case "user.deleted":
		payload = fmt.Sprintf(`{
			"data": {
				"id": "%s",
				"deleted": true
			},
			"object": "event",
			"type": "%s"
		}`, clerkID, eventType)
	}

	return []byte(payload)
}

// FakeMediaStore keeps uploaded objects in memory so services that
// need a media collaborator can run without an object store.
type FakeMediaStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

func NewFakeMediaStore() *FakeMediaStore {
	return &FakeMediaStore{Objects: make(map[string][]byte)}
}

func (f *FakeMediaStore) Upload(ctx context.Context, payload []byte, contentType, folder string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	objectName := fmt.Sprintf("%s/object-%d", folder, len(f.Objects)+1)
	f.Objects[objectName] = payload
	return "https://media.test/" + objectName, objectName, nil
}

func (f *FakeMediaStore) Delete(ctx context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Objects, objectName)
	f.Deleted = append(f.Deleted, objectName)
	return nil
}
