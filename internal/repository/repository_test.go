package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/storage"
	"premium_gallery/internal/storage/postgresql/postgrestest"
	redisapp "premium_gallery/internal/storage/redis"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func newUser(role models.Role) models.User {
	return models.User{
		Username: gofakeit.Username() + gofakeit.DigitN(6),
		Email:    gofakeit.Email(),
		Password: []byte(gofakeit.Password(true, true, true, false, false, 12)),
		Role:     role,
	}
}

func saveUser(t *testing.T, repo *repository.Repository, role models.Role) uuid.UUID {
	t.Helper()

	id, err := repo.User.SaveUser(context.Background(), newUser(role), gofakeit.Name())
	require.NoError(t, err)

	return id
}

func insertItem(t *testing.T, repo *repository.GalleryRepo, typ models.GalleryType, premium bool) models.GalleryItem {
	t.Helper()

	item, err := repo.Insert(context.Background(), models.GalleryItem{
		URL:           "/uploads/processed_" + gofakeit.DigitN(10) + ".jpg",
		Title:         gofakeit.Sentence(3),
		Type:          typ,
		ContentRating: models.RatingSFW,
		IsPremium:     premium,
		Tags:          models.Tags{"a", "b"},
	})
	require.NoError(t, err)

	return item
}

func TestGalleryRepo(t *testing.T) {
	pool := postgrestest.New(t)
	repo := repository.NewRepositoryFromPool(pool)
	gallery := repo.Gallery
	ctx := context.Background()

	owner := saveUser(t, repo, models.RoleCreator)

	t.Run("insert returns stored row", func(t *testing.T) {
		item, err := gallery.Insert(ctx, models.GalleryItem{
			URL:           "/uploads/processed_1_a.jpg",
			Title:         "Test",
			Type:          models.GalleryTypeGallery,
			ContentRating: models.RatingNSFW,
			Tags:          models.Tags{"summer", "beach"},
			Instagram:     models.NullableString("@me"),
			Twitter:       models.NullableString("   "),
			UploaderID:    &owner,
		})
		require.NoError(t, err)

		assert.NotZero(t, item.ID)
		assert.Equal(t, "Test", item.Title)
		assert.Equal(t, models.RatingNSFW, item.ContentRating)
		assert.Equal(t, models.Tags{"summer", "beach"}, item.Tags)
		require.NotNil(t, item.Instagram)
		assert.Equal(t, "@me", *item.Instagram)
		assert.Nil(t, item.Twitter)
		require.NotNil(t, item.UploaderID)
		assert.Equal(t, owner, *item.UploaderID)
		assert.False(t, item.CreatedAt.IsZero())
	})

	t.Run("legacy tag encodings are readable", func(t *testing.T) {
		for raw, want := range map[string]models.Tags{
			`"[\"x\",\"y\"]"`: {"x", "y"},
			`{x,y}`:           {"x", "y"},
			`not tags`:        {},
		} {
			var id int64
			err := pool.QueryRow(ctx,
				`INSERT INTO gallery_items (url, title, tags) VALUES ('/uploads/l.jpg', 'legacy', $1) RETURNING id`,
				raw).Scan(&id)
			require.NoError(t, err)

			item, err := gallery.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, want, item.Tags, raw)
		}
	})

	t.Run("list filters by type and premium, newest first", func(t *testing.T) {
		_, err := pool.Exec(ctx, "DELETE FROM gallery_items")
		require.NoError(t, err)

		free := insertItem(t, gallery, models.GalleryTypeFeatured, false)
		paid := insertItem(t, gallery, models.GalleryTypeFeatured, true)
		insertItem(t, gallery, models.GalleryTypeGallery, true)

		all, err := gallery.ListByType(ctx, models.GalleryTypeFeatured, nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, paid.ID, all[0].ID)
		assert.Equal(t, free.ID, all[1].ID)

		premium, err := gallery.ListByType(ctx, models.GalleryTypeFeatured, boolPtr(true))
		require.NoError(t, err)
		require.Len(t, premium, 1)
		assert.Equal(t, paid.ID, premium[0].ID)

		nonPremium, err := gallery.ListByType(ctx, models.GalleryTypeFeatured, boolPtr(false))
		require.NoError(t, err)
		require.Len(t, nonPremium, 1)
		assert.Equal(t, free.ID, nonPremium[0].ID)
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		_, err := pool.Exec(ctx, "DELETE FROM gallery_items")
		require.NoError(t, err)

		items, err := gallery.ListByType(ctx, models.GalleryTypeGallery, nil)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("set premium", func(t *testing.T) {
		item := insertItem(t, gallery, models.GalleryTypeGallery, false)

		updated, err := gallery.SetPremium(ctx, item.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.IsPremium)

		_, err = gallery.SetPremium(ctx, 999999, true)
		assert.ErrorIs(t, err, storage.ErrItemNotFound)
	})

	t.Run("clear all premium counts only premium rows", func(t *testing.T) {
		_, err := pool.Exec(ctx, "DELETE FROM gallery_items")
		require.NoError(t, err)

		insertItem(t, gallery, models.GalleryTypeGallery, true)
		insertItem(t, gallery, models.GalleryTypeFeatured, true)
		insertItem(t, gallery, models.GalleryTypeGallery, false)

		n, err := gallery.ClearAllPremium(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = gallery.ClearAllPremium(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("delete returns removed row", func(t *testing.T) {
		item := insertItem(t, gallery, models.GalleryTypeGallery, false)

		deleted, err := gallery.Delete(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.URL, deleted.URL)

		_, err = gallery.Delete(ctx, item.ID)
		assert.ErrorIs(t, err, storage.ErrItemNotFound)

		_, err = gallery.GetByID(ctx, item.ID)
		assert.ErrorIs(t, err, storage.ErrItemNotFound)
	})
}

func TestUserRepo(t *testing.T) {
	pool := postgrestest.New(t)
	repo := repository.NewRepositoryFromPool(pool)
	ctx := context.Background()

	user := newUser(models.RoleCreator)
	id, err := repo.User.SaveUser(ctx, user, "Display")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	t.Run("duplicate email or username", func(t *testing.T) {
		dup := newUser(models.RoleFollower)
		dup.Email = user.Email

		_, err := repo.User.SaveUser(ctx, dup, "Dup")
		assert.ErrorIs(t, err, storage.ErrUserExists)

		exists, err := repo.User.Exists(ctx, user.Email, "someone-else")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.User.Exists(ctx, "nobody@example.com", "nobody")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("lookup by email or username", func(t *testing.T) {
		byEmail, err := repo.User.UserByIdentifier(ctx, user.Email)
		require.NoError(t, err)
		assert.Equal(t, id, byEmail.ID)
		assert.Equal(t, models.RoleCreator, byEmail.Role)
		assert.Equal(t, user.Password, byEmail.Password)

		byName, err := repo.User.UserByIdentifier(ctx, user.Username)
		require.NoError(t, err)
		assert.Equal(t, id, byName.ID)

		_, err = repo.User.UserByIdentifier(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrUserNotFound)

		require.NoError(t, repo.User.UpdateLastLogin(ctx, id))
	})

	t.Run("creator profile starts pending", func(t *testing.T) {
		profile, err := repo.Creator.CreatorByUserID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.CreatorPending, profile.Status)
		assert.Equal(t, "Display", profile.DisplayName)
		assert.Empty(t, profile.Categories)

		pending, err := repo.Creator.ListByStatus(ctx, models.CreatorPending)
		require.NoError(t, err)
		assert.Len(t, pending, 1)

		approved, err := repo.Creator.SetStatus(ctx, id, models.CreatorApproved)
		require.NoError(t, err)
		assert.Equal(t, models.CreatorApproved, approved.Status)

		withPhoto, err := repo.Creator.SetPhoto(ctx, id, "/uploads/p.jpg")
		require.NoError(t, err)
		require.NotNil(t, withPhoto.PhotoURL)
		assert.Equal(t, "/uploads/p.jpg", *withPhoto.PhotoURL)

		bio := "hello"
		updated, err := repo.Creator.UpdateProfile(ctx, id, "New Name", &bio, []string{"art", "travel"})
		require.NoError(t, err)
		assert.Equal(t, []string{"art", "travel"}, updated.Categories)

		_, err = repo.Creator.SetStatus(ctx, uuid.New(), models.CreatorApproved)
		assert.ErrorIs(t, err, storage.ErrProfileNotFound)
	})
}

func TestSubscriptionRepo(t *testing.T) {
	pool := postgrestest.New(t)
	repo := repository.NewRepositoryFromPool(pool)
	ctx := context.Background()

	follower := saveUser(t, repo, models.RoleFollower)
	creator := saveUser(t, repo, models.RoleCreator)
	expires := time.Now().Add(30 * 24 * time.Hour)

	sub, err := repo.Subscription.Upsert(ctx, follower, creator, expires)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionActive, sub.Status)

	active, err := repo.Subscription.HasActive(ctx, follower, creator)
	require.NoError(t, err)
	assert.True(t, active)

	cancelled, err := repo.Subscription.Cancel(ctx, follower, creator)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = repo.Subscription.Cancel(ctx, follower, creator)
	assert.ErrorIs(t, err, storage.ErrSubscriptionNotFound)

	again, err := repo.Subscription.Upsert(ctx, follower, creator, expires)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, again.ID, "re-subscribing reuses the row")
	assert.Nil(t, again.CancelledAt)

	subs, err := repo.Subscription.ListByFollower(ctx, follower)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	item := insertItem(t, repo.Gallery, models.GalleryTypeGallery, true)

	_, err = repo.Subscription.CreatePurchase(ctx, follower, item.ID, 500)
	require.NoError(t, err)
	_, err = repo.Subscription.CreatePurchase(ctx, follower, item.ID, 500)
	assert.ErrorIs(t, err, storage.ErrPurchaseExists)

	has, err := repo.Subscription.HasPurchase(ctx, follower, item.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestMediaRepo(t *testing.T) {
	pool := postgrestest.New(t)
	repo := repository.NewMediaRepository(pool)
	ctx := context.Background()

	w, h := 800, 600
	media := models.NewMedia(uuid.New(), models.MediaTypePhoto, "photo.jpg", "/uploads/processed_1.jpg", 2048)
	media.MimeType = "image/jpeg"
	media.Width = &w
	media.Height = &h
	media.Metadata["source"] = "test"

	created, err := repo.CreateMedia(ctx, media)
	require.NoError(t, err)
	assert.Equal(t, media.ID, created.ID)

	found, err := repo.FindByID(ctx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", found.OriginalFilename)
	require.NotNil(t, found.Width)
	assert.Equal(t, 800, *found.Width)
	assert.Equal(t, "test", found.Metadata["source"])

	list, err := repo.ListByUploader(ctx, media.UploaderID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrFileNotFound)
}

func setupSessionRepo() (*repository.RedisSessionRepo, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	client := &redisapp.Client{Client: db}

	return repository.NewRedisSessionRepo(client), mock
}

func TestRedisSessionRepo(t *testing.T) {
	ctx := context.Background()
	repo, mock := setupSessionRepo()
	ttl := 24 * time.Hour
	token := "tok"

	session := models.Session{
		UserID:    uuid.New(),
		Username:  "alice",
		Email:     "alice@example.com",
		Role:      models.RoleCreator,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(session)
	require.NoError(t, err)

	t.Run("save", func(t *testing.T) {
		mock.ExpectSet("session:tok", string(data), ttl).SetVal("OK")
		require.NoError(t, repo.SaveSession(ctx, token, session, ttl))
	})

	t.Run("save error", func(t *testing.T) {
		mock.ExpectSet("session:tok", string(data), ttl).SetErr(redis.ErrClosed)
		assert.ErrorIs(t, repo.SaveSession(ctx, token, session, ttl), redis.ErrClosed)
	})

	t.Run("get", func(t *testing.T) {
		mock.ExpectGet("session:tok").SetVal(string(data))

		got, err := repo.GetSession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, session, got)
	})

	t.Run("get missing", func(t *testing.T) {
		mock.ExpectGet("session:tok").RedisNil()

		_, err := repo.GetSession(ctx, token)
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	})

	t.Run("touch", func(t *testing.T) {
		mock.ExpectExpire("session:tok", ttl).SetVal(true)
		require.NoError(t, repo.TouchSession(ctx, token, ttl))

		mock.ExpectExpire("session:tok", ttl).SetVal(false)
		assert.ErrorIs(t, repo.TouchSession(ctx, token, ttl), storage.ErrSessionNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		mock.ExpectDel("session:tok").SetVal(1)
		require.NoError(t, repo.DeleteSession(ctx, token))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
