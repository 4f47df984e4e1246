package response

import (
	"time"

	"premium_gallery/internal/domain/models"

	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request. Error carries the raw
// cause and is only filled outside production.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
}

type LoginResponse struct {
	Message   string      `json:"message"`
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Redirect  string      `json:"redirect"`
}

type PremiumUpdatedResponse struct {
	Message     string             `json:"message"`
	UpdatedItem models.GalleryItem `json:"updatedItem"`
}

type PremiumClearedResponse struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updatedCount"`
}

type DeletedResponse struct {
	Message     string             `json:"message"`
	DeletedItem models.GalleryItem `json:"deletedItem"`
}

type AccessResponse struct {
	ItemID    int64 `json:"itemId"`
	HasAccess bool  `json:"hasAccess"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}
