package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var subscriptionColumns = []string{
	"id",
	"follower_id",
	"creator_id",
	"status",
	"started_at",
	"expires_at",
	"cancelled_at",
}

type SubscriptionRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepo {
	return &SubscriptionRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Upsert activates the follower's subscription to creator, reactivating a
// cancelled or expired one.
func (r *SubscriptionRepo) Upsert(ctx context.Context, followerID, creatorID uuid.UUID, expiresAt time.Time) (models.Subscription, error) {
	const op = "repository.subscription_repository.Upsert"

	query, args, err := r.sb.Insert("subscriptions").
		Columns("follower_id", "creator_id", "status", "started_at", "expires_at").
		Values(followerID, creatorID, string(models.SubscriptionActive), sq.Expr("NOW()"), expiresAt).
		Suffix(`ON CONFLICT (follower_id, creator_id) DO UPDATE
			SET status = EXCLUDED.status,
				started_at = EXCLUDED.started_at,
				expires_at = EXCLUDED.expires_at,
				cancelled_at = NULL
			RETURNING ` + joinColumns(subscriptionColumns)).
		ToSql()
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

func (r *SubscriptionRepo) Cancel(ctx context.Context, followerID, creatorID uuid.UUID) (models.Subscription, error) {
	const op = "repository.subscription_repository.Cancel"

	query, args, err := r.sb.Update("subscriptions").
		Set("status", string(models.SubscriptionCancelled)).
		Set("cancelled_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"follower_id": followerID,
			"creator_id":  creatorID,
			"status":      string(models.SubscriptionActive),
		}).
		Suffix("RETURNING " + joinColumns(subscriptionColumns)).
		ToSql()
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, fmt.Errorf("%s: %w", op, storage.ErrSubscriptionNotFound)
		}
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	return sub, nil
}

func (r *SubscriptionRepo) ListByFollower(ctx context.Context, followerID uuid.UUID) ([]models.Subscription, error) {
	const op = "repository.subscription_repository.ListByFollower"

	query, args, err := r.sb.Select(subscriptionColumns...).
		From("subscriptions").
		Where(sq.Eq{"follower_id": followerID}).
		OrderBy("started_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// HasActive reports whether follower has an unexpired active subscription to
// creator.
func (r *SubscriptionRepo) HasActive(ctx context.Context, followerID, creatorID uuid.UUID) (bool, error) {
	const op = "repository.subscription_repository.HasActive"

	query, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("subscriptions").
		Where(sq.Eq{
			"follower_id": followerID,
			"creator_id":  creatorID,
			"status":      string(models.SubscriptionActive),
		}).
		Where(sq.Or{
			sq.Eq{"expires_at": nil},
			sq.Expr("expires_at > NOW()"),
		}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var ok bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func (r *SubscriptionRepo) CreatePurchase(ctx context.Context, userID uuid.UUID, itemID, amountCents int64) (models.Purchase, error) {
	const op = "repository.subscription_repository.CreatePurchase"

	query, args, err := r.sb.Insert("purchases").
		Columns("user_id", "item_id", "amount_cents").
		Values(userID, itemID, amountCents).
		Suffix("RETURNING id, user_id, item_id, amount_cents, created_at").
		ToSql()
	if err != nil {
		return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
	}

	var p models.Purchase
	err = r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.UserID, &p.ItemID, &p.AmountCts, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Purchase{}, fmt.Errorf("%s: %w", op, storage.ErrPurchaseExists)
		}
		return models.Purchase{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (r *SubscriptionRepo) HasPurchase(ctx context.Context, userID uuid.UUID, itemID int64) (bool, error) {
	const op = "repository.subscription_repository.HasPurchase"

	query, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("purchases").
		Where(sq.Eq{"user_id": userID, "item_id": itemID}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var ok bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

func scanSubscription(row pgx.Row) (models.Subscription, error) {
	var (
		s      models.Subscription
		status string
	)

	if err := row.Scan(
		&s.ID,
		&s.FollowerID,
		&s.CreatorID,
		&status,
		&s.StartedAt,
		&s.ExpiresAt,
		&s.CancelledAt,
	); err != nil {
		return models.Subscription{}, err
	}
	s.Status = models.SubscriptionStatus(status)

	return s, nil
}
