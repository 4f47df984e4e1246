package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/storage"

	"github.com/google/uuid"
)

type CreatorStatusProvider interface {
	Status(ctx context.Context, userID uuid.UUID) (models.CreatorStatus, error)
}

// SubscriptionService records subscriptions and single-item purchases.
// Payment is stubbed: rows are written without charging anyone.
type SubscriptionService struct {
	log       *slog.Logger
	repo      repository.SubscriptionRepository
	items     repository.GalleryRepository
	creators  CreatorStatusProvider
	period    time.Duration
	itemPrice int64
	now       func() time.Time
}

func NewSubscriptionService(
	log *slog.Logger,
	repo repository.SubscriptionRepository,
	items repository.GalleryRepository,
	creators CreatorStatusProvider,
	period time.Duration,
	itemPrice int64,
) *SubscriptionService {
	return &SubscriptionService{
		log:       log,
		repo:      repo,
		items:     items,
		creators:  creators,
		period:    period,
		itemPrice: itemPrice,
		now:       time.Now,
	}
}

// Subscribe activates (or reactivates) a subscription to an approved creator.
func (s *SubscriptionService) Subscribe(ctx context.Context, auth *models.AuthContext, creatorID uuid.UUID) (models.Subscription, error) {
	const op = "service.SubscriptionService.Subscribe"

	if auth == nil {
		return models.Subscription{}, apperror.Unauthenticated()
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("follower_id", auth.UserID.String()),
		slog.String("creator_id", creatorID.String()),
	)

	status, err := s.creators.Status(ctx, creatorID)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	if status != models.CreatorApproved {
		return models.Subscription{}, apperror.BadRequest(apperror.CodeInvalidRequest, "Creator is not accepting subscriptions")
	}

	sub, err := s.repo.Upsert(ctx, auth.UserID, creatorID, s.now().UTC().Add(s.period))
	if err != nil {
		log.Error("failed to save subscription", sl.Err(err))
		return models.Subscription{}, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	log.Info("subscription activated")

	return sub, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, auth *models.AuthContext, creatorID uuid.UUID) (models.Subscription, error) {
	const op = "service.SubscriptionService.Cancel"

	if auth == nil {
		return models.Subscription{}, apperror.Unauthenticated()
	}

	sub, err := s.repo.Cancel(ctx, auth.UserID, creatorID)
	if err != nil {
		if errors.Is(err, storage.ErrSubscriptionNotFound) {
			return models.Subscription{}, fmt.Errorf("%s: %w", op, apperror.NotFound("Subscription not found"))
		}
		return models.Subscription{}, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	s.log.Info("subscription cancelled",
		slog.String("op", op),
		slog.String("follower_id", auth.UserID.String()),
		slog.String("creator_id", creatorID.String()),
	)

	return sub, nil
}

func (s *SubscriptionService) List(ctx context.Context, auth *models.AuthContext) ([]models.Subscription, error) {
	const op = "service.SubscriptionService.List"

	if auth == nil {
		return nil, apperror.Unauthenticated()
	}

	subs, err := s.repo.ListByFollower(ctx, auth.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}
	if subs == nil {
		subs = []models.Subscription{}
	}

	return subs, nil
}

// Purchase unlocks one premium item for the caller.
func (s *SubscriptionService) Purchase(ctx context.Context, auth *models.AuthContext, itemID int64) (models.Purchase, error) {
	const op = "service.SubscriptionService.Purchase"

	if auth == nil {
		return models.Purchase{}, apperror.Unauthenticated()
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return models.Purchase{}, fmt.Errorf("%s: %w", op, mapItemErr(err))
	}
	if !item.IsPremium {
		return models.Purchase{}, apperror.BadRequest(apperror.CodeInvalidRequest, "Item is not premium")
	}

	p, err := s.repo.CreatePurchase(ctx, auth.UserID, itemID, s.itemPrice)
	if err != nil {
		if errors.Is(err, storage.ErrPurchaseExists) {
			return models.Purchase{}, fmt.Errorf("%s: %w", op, apperror.Conflict("Item already purchased"))
		}
		s.log.Error("failed to save purchase", slog.String("op", op), sl.Err(err))
		return models.Purchase{}, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	return p, nil
}

// CheckAccess reports whether the caller may view the item in full. Free
// items are open to everyone.
func (s *SubscriptionService) CheckAccess(ctx context.Context, auth *models.AuthContext, itemID int64) (bool, error) {
	const op = "service.SubscriptionService.CheckAccess"

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, mapItemErr(err))
	}

	if !item.IsPremium || auth.CanActOn(item.UploaderID) {
		return true, nil
	}
	if auth == nil {
		return false, nil
	}

	bought, err := s.repo.HasPurchase(ctx, auth.UserID, itemID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}
	if bought {
		return true, nil
	}

	if item.UploaderID == nil {
		return false, nil
	}

	subscribed, err := s.repo.HasActive(ctx, auth.UserID, *item.UploaderID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	return subscribed, nil
}

func mapItemErr(err error) error {
	if errors.Is(err, storage.ErrItemNotFound) {
		return apperror.NotFound("Item not found")
	}

	return apperror.Database(err)
}
