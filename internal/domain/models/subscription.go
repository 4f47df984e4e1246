package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

type Subscription struct {
	ID          int64              `db:"id" json:"id"`
	FollowerID  uuid.UUID          `db:"follower_id" json:"followerId"`
	CreatorID   uuid.UUID          `db:"creator_id" json:"creatorId"`
	Status      SubscriptionStatus `db:"status" json:"status"`
	StartedAt   time.Time          `db:"started_at" json:"startedAt"`
	ExpiresAt   *time.Time         `db:"expires_at" json:"expiresAt"`
	CancelledAt *time.Time         `db:"cancelled_at" json:"cancelledAt"`
}

// Purchase unlocks a single premium gallery item for a user.
type Purchase struct {
	ID        int64     `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	ItemID    int64     `db:"item_id" json:"itemId"`
	AmountCts int64     `db:"amount_cents" json:"amountCents"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
