package clerk

import "encoding/json"

// ClerkWebhookEvent is the envelope Clerk posts to the webhook endpoint.
type ClerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ClerkUserData is the user payload carried by user.* webhook events.
type ClerkUserData struct {
	ID              string         `json:"id"`
	Username        string         `json:"username"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	ImageURL        string         `json:"image_url"`
	ProfileImageURL string         `json:"profile_image_url"`
	EmailAddresses  []EmailAddress `json:"email_addresses"`
}

type EmailAddress struct {
	ID           string       `json:"id"`
	EmailAddress string       `json:"email_address"`
	Verification Verification `json:"verification"`
}

type Verification struct {
	Status string `json:"status"`
}
