package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, followerID, creatorID uuid.UUID, expiresAt time.Time) (models.Subscription, error) {
	args := m.Called(ctx, followerID, creatorID, expiresAt)
	return args.Get(0).(models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Cancel(ctx context.Context, followerID, creatorID uuid.UUID) (models.Subscription, error) {
	args := m.Called(ctx, followerID, creatorID)
	return args.Get(0).(models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListByFollower(ctx context.Context, followerID uuid.UUID) ([]models.Subscription, error) {
	args := m.Called(ctx, followerID)
	subs, _ := args.Get(0).([]models.Subscription)
	return subs, args.Error(1)
}

func (m *MockSubscriptionRepository) HasActive(ctx context.Context, followerID, creatorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, creatorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) CreatePurchase(ctx context.Context, userID uuid.UUID, itemID, amountCents int64) (models.Purchase, error) {
	args := m.Called(ctx, userID, itemID, amountCents)
	return args.Get(0).(models.Purchase), args.Error(1)
}

func (m *MockSubscriptionRepository) HasPurchase(ctx context.Context, userID uuid.UUID, itemID int64) (bool, error) {
	args := m.Called(ctx, userID, itemID)
	return args.Bool(0), args.Error(1)
}

type MockGalleryRepository struct {
	mock.Mock
}

func (m *MockGalleryRepository) Insert(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) ListByType(ctx context.Context, typ models.GalleryType, premium *bool) ([]models.GalleryItem, error) {
	args := m.Called(ctx, typ, premium)
	items, _ := args.Get(0).([]models.GalleryItem)
	return items, args.Error(1)
}

func (m *MockGalleryRepository) GetByID(ctx context.Context, id int64) (models.GalleryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) SetPremium(ctx context.Context, id int64, value bool) (models.GalleryItem, error) {
	args := m.Called(ctx, id, value)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockGalleryRepository) ClearAllPremium(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGalleryRepository) Delete(ctx context.Context, id int64) (models.GalleryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

type MockCreatorStatus struct {
	mock.Mock
}

func (m *MockCreatorStatus) Status(ctx context.Context, userID uuid.UUID) (models.CreatorStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.CreatorStatus), args.Error(1)
}

const (
	testPeriod = 30 * 24 * time.Hour
	testPrice  = int64(499)
)

var (
	ctx       = context.Background()
	fixedNow  = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	creatorID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	follower  = &models.AuthContext{UserID: uuid.New(), Role: models.RoleFollower}
)

type fixture struct {
	subs     *MockSubscriptionRepository
	items    *MockGalleryRepository
	creators *MockCreatorStatus
	service  *SubscriptionService
}

func newFixture() *fixture {
	f := &fixture{
		subs:     new(MockSubscriptionRepository),
		items:    new(MockGalleryRepository),
		creators: new(MockCreatorStatus),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewSubscriptionService(log, f.subs, f.items, f.creators, testPeriod, testPrice)
	f.service.now = func() time.Time { return fixedNow }

	return f
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.Status)
}

func TestSubscribe(t *testing.T) {
	t.Run("approved creator", func(t *testing.T) {
		f := newFixture()
		want := models.Subscription{ID: 1, FollowerID: follower.UserID, CreatorID: creatorID, Status: models.SubscriptionActive}

		f.creators.On("Status", ctx, creatorID).Return(models.CreatorApproved, nil)
		f.subs.On("Upsert", ctx, follower.UserID, creatorID, fixedNow.Add(testPeriod)).Return(want, nil)

		got, err := f.service.Subscribe(ctx, follower, creatorID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		f.subs.AssertExpectations(t)
	})

	t.Run("pending creator", func(t *testing.T) {
		f := newFixture()
		f.creators.On("Status", ctx, creatorID).Return(models.CreatorPending, nil)

		_, err := f.service.Subscribe(ctx, follower, creatorID)
		requireStatus(t, err, http.StatusBadRequest)
		f.subs.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown creator", func(t *testing.T) {
		f := newFixture()
		f.creators.On("Status", ctx, creatorID).Return(models.CreatorStatus(""), apperror.NotFound("Creator not found"))

		_, err := f.service.Subscribe(ctx, follower, creatorID)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestCancel(t *testing.T) {
	f := newFixture()
	f.subs.On("Cancel", ctx, follower.UserID, creatorID).
		Return(models.Subscription{Status: models.SubscriptionCancelled}, nil).Once()
	f.subs.On("Cancel", ctx, follower.UserID, creatorID).
		Return(models.Subscription{}, storage.ErrSubscriptionNotFound).Once()

	sub, err := f.service.Cancel(ctx, follower, creatorID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, sub.Status)

	_, err = f.service.Cancel(ctx, follower, creatorID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestList_Empty(t *testing.T) {
	f := newFixture()
	f.subs.On("ListByFollower", ctx, follower.UserID).Return(nil, nil)

	subs, err := f.service.List(ctx, follower)
	require.NoError(t, err)
	require.NotNil(t, subs)
	assert.Empty(t, subs)
}

func TestPurchase(t *testing.T) {
	t.Run("premium item", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(9)).Return(models.GalleryItem{ID: 9, IsPremium: true}, nil)
		f.subs.On("CreatePurchase", ctx, follower.UserID, int64(9), testPrice).
			Return(models.Purchase{ID: 1, ItemID: 9, AmountCts: testPrice}, nil)

		p, err := f.service.Purchase(ctx, follower, 9)
		require.NoError(t, err)
		assert.Equal(t, testPrice, p.AmountCts)
	})

	t.Run("free item", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(9)).Return(models.GalleryItem{ID: 9}, nil)

		_, err := f.service.Purchase(ctx, follower, 9)
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("duplicate", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(9)).Return(models.GalleryItem{ID: 9, IsPremium: true}, nil)
		f.subs.On("CreatePurchase", ctx, follower.UserID, int64(9), testPrice).
			Return(models.Purchase{}, storage.ErrPurchaseExists)

		_, err := f.service.Purchase(ctx, follower, 9)
		requireStatus(t, err, http.StatusConflict)
	})

	t.Run("missing item", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(9)).Return(models.GalleryItem{}, storage.ErrItemNotFound)

		_, err := f.service.Purchase(ctx, follower, 9)
		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestCheckAccess(t *testing.T) {
	premium := models.GalleryItem{ID: 5, IsPremium: true, UploaderID: &creatorID}
	owner := &models.AuthContext{UserID: creatorID, Role: models.RoleCreator}
	admin := &models.AuthContext{UserID: uuid.New(), Role: models.RoleAdmin}

	t.Run("free item", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(models.GalleryItem{ID: 5}, nil)

		ok, err := f.service.CheckAccess(ctx, nil, 5)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("anonymous on premium", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(premium, nil)

		ok, err := f.service.CheckAccess(ctx, nil, 5)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("owner and admin", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(premium, nil)

		for _, ac := range []*models.AuthContext{owner, admin} {
			ok, err := f.service.CheckAccess(ctx, ac, 5)
			require.NoError(t, err)
			assert.True(t, ok)
		}
		f.subs.AssertNotCalled(t, "HasPurchase", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("purchased", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(premium, nil)
		f.subs.On("HasPurchase", ctx, follower.UserID, int64(5)).Return(true, nil)

		ok, err := f.service.CheckAccess(ctx, follower, 5)
		require.NoError(t, err)
		assert.True(t, ok)
		f.subs.AssertNotCalled(t, "HasActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("subscribed", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(premium, nil)
		f.subs.On("HasPurchase", ctx, follower.UserID, int64(5)).Return(false, nil)
		f.subs.On("HasActive", ctx, follower.UserID, creatorID).Return(true, nil)

		ok, err := f.service.CheckAccess(ctx, follower, 5)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("no access", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(premium, nil)
		f.subs.On("HasPurchase", ctx, follower.UserID, int64(5)).Return(false, nil)
		f.subs.On("HasActive", ctx, follower.UserID, creatorID).Return(false, nil)

		ok, err := f.service.CheckAccess(ctx, follower, 5)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("store error", func(t *testing.T) {
		f := newFixture()
		f.items.On("GetByID", ctx, int64(5)).Return(premium, nil)
		f.subs.On("HasPurchase", ctx, follower.UserID, int64(5)).Return(false, errors.New("db down"))

		_, err := f.service.CheckAccess(ctx, follower, 5)
		assert.True(t, apperror.IsKind(err, apperror.KindDatabase))
	})
}
