package repository

import (
	"context"
	"time"

	"premium_gallery/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User, displayName string) (uuid.UUID, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	UserByIdentifier(ctx context.Context, identifier string) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

type CreatorRepository interface {
	CreatorByUserID(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error)
	ListByStatus(ctx context.Context, status models.CreatorStatus) ([]models.CreatorProfile, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status models.CreatorStatus) (models.CreatorProfile, error)
	SetPhoto(ctx context.Context, userID uuid.UUID, photoURL string) (models.CreatorProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string, bio *string, categories []string) (models.CreatorProfile, error)
}

type SessionRepository interface {
	SaveSession(ctx context.Context, token string, session models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	TouchSession(ctx context.Context, token string, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

type GalleryRepository interface {
	Insert(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error)
	ListByType(ctx context.Context, typ models.GalleryType, premium *bool) ([]models.GalleryItem, error)
	GetByID(ctx context.Context, id int64) (models.GalleryItem, error)
	SetPremium(ctx context.Context, id int64, value bool) (models.GalleryItem, error)
	ClearAllPremium(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) (models.GalleryItem, error)
}

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
	ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]models.Media, error)
}

type SubscriptionRepository interface {
	Upsert(ctx context.Context, followerID, creatorID uuid.UUID, expiresAt time.Time) (models.Subscription, error)
	Cancel(ctx context.Context, followerID, creatorID uuid.UUID) (models.Subscription, error)
	ListByFollower(ctx context.Context, followerID uuid.UUID) ([]models.Subscription, error)
	HasActive(ctx context.Context, followerID, creatorID uuid.UUID) (bool, error)
	CreatePurchase(ctx context.Context, userID uuid.UUID, itemID, amountCents int64) (models.Purchase, error)
	HasPurchase(ctx context.Context, userID uuid.UUID, itemID int64) (bool, error)
}
