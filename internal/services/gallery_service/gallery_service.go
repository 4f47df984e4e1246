package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/services/media"
	"premium_gallery/internal/storage"
)

const (
	uploadsPrefix = "/uploads/"
	defaultTitle  = "Untitled"
)

type ImageProcessor interface {
	Process(ctx context.Context, file *multipart.FileHeader, field string) (*media.Artifact, error)
	Discard(ctx context.Context, artifact *media.Artifact)
}

type ArtifactRemover interface {
	Delete(ctx context.Context, name string) error
}

type GalleryService struct {
	log       *slog.Logger
	repo      repository.GalleryRepository
	images    ImageProcessor
	artifacts ArtifactRemover
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, images ImageProcessor, artifacts ArtifactRemover) *GalleryService {
	return &GalleryService{
		log:       log,
		repo:      repo,
		images:    images,
		artifacts: artifacts,
	}
}

// UploadInput holds the raw multipart form fields of a gallery upload.
type UploadInput struct {
	Type          models.GalleryType
	Title         string
	Description   string
	Tags          string
	ContentRating string
	IsPremium     string
	Instagram     string
	Twitter       string
	TikTok        string
	OnlyFans      string
}

// ParseType validates the collection name; empty means gallery.
func ParseType(raw string) (models.GalleryType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.GalleryTypeGallery, nil
	}

	t := models.GalleryType(raw)
	if !t.Valid() {
		return "", apperror.BadRequest(apperror.CodeInvalidType, "Invalid type. Allowed values: gallery, featured")
	}

	return t, nil
}

// ParsePremium returns nil when raw is absent or not a boolean.
func ParsePremium(raw string) *bool {
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}

	return &v
}

// ParseTags accepts a JSON array, kept exactly as submitted, or a comma
// separated list, which is trimmed and stripped of empty entries.
func ParseTags(raw string) models.Tags {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Tags{}
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		if arr == nil {
			return models.Tags{}
		}
		return models.Tags(arr)
	}

	parts := strings.Split(raw, ",")
	tags := make(models.Tags, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}

	return tags
}

// NormalizeURL rewrites a stored location into something a client can fetch:
// absolute http(s) URLs pass through, everything else is rooted at /uploads/.
func NormalizeURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}

	raw = strings.ReplaceAll(raw, "\\", "/")
	if i := strings.Index(raw, uploadsPrefix); i >= 0 {
		return raw[i:]
	}

	name := path.Base(raw)
	if name == "." || name == "/" {
		return raw
	}

	return uploadsPrefix + name
}

func (s *GalleryService) Upload(ctx context.Context, auth *models.AuthContext, file *multipart.FileHeader, in UploadInput) (models.GalleryItem, error) {
	const op = "service.GalleryService.Upload"

	if auth == nil {
		return models.GalleryItem{}, apperror.Unauthenticated()
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("type", string(in.Type)),
		slog.String("user_id", auth.UserID.String()),
	)

	artifact, err := s.images.Process(ctx, file, "image")
	if err != nil {
		log.Warn("upload rejected", sl.Err(err))
		return models.GalleryItem{}, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSpace(strings.TrimSuffix(artifact.OriginalFilename, filepath.Ext(artifact.OriginalFilename)))
	}
	if title == "" {
		title = defaultTitle
	}

	premium := ParsePremium(strings.TrimSpace(in.IsPremium))
	uploader := auth.UserID

	item := models.GalleryItem{
		URL:           artifact.URL,
		Title:         title,
		Type:          in.Type,
		ContentRating: models.ParseContentRating(in.ContentRating),
		IsPremium:     premium != nil && *premium,
		Tags:          ParseTags(in.Tags),
		Description:   models.NullableString(in.Description),
		Instagram:     models.NullableString(in.Instagram),
		Twitter:       models.NullableString(in.Twitter),
		TikTok:        models.NullableString(in.TikTok),
		OnlyFans:      models.NullableString(in.OnlyFans),
		UploaderID:    &uploader,
	}

	created, err := s.repo.Insert(ctx, item)
	if err != nil {
		log.Error("failed to insert gallery item", sl.Err(err))
		s.images.Discard(ctx, artifact)

		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	created.URL = NormalizeURL(created.URL)
	log.Info("gallery item created", slog.Int64("id", created.ID))

	return created, nil
}

// List never fails: store errors are logged and an empty list is returned.
func (s *GalleryService) List(ctx context.Context, typ models.GalleryType, premium *bool) []models.GalleryItem {
	const op = "service.GalleryService.List"

	items, err := s.repo.ListByType(ctx, typ, premium)
	if err != nil {
		s.log.Error("failed to list gallery items",
			slog.String("op", op),
			slog.String("type", string(typ)),
			sl.Err(err),
		)
		return []models.GalleryItem{}
	}
	if items == nil {
		return []models.GalleryItem{}
	}

	for i := range items {
		items[i].URL = NormalizeURL(items[i].URL)
		if items[i].Tags == nil {
			items[i].Tags = models.Tags{}
		}
	}

	return items
}

func (s *GalleryService) Get(ctx context.Context, id int64) (models.GalleryItem, error) {
	const op = "service.GalleryService.Get"

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, mapItemErr(err))
	}
	item.URL = NormalizeURL(item.URL)

	return item, nil
}

// SetPremium toggles the premium flag of an item the caller may act on.
func (s *GalleryService) SetPremium(ctx context.Context, auth *models.AuthContext, id int64, value bool) (models.GalleryItem, error) {
	const op = "service.GalleryService.SetPremium"

	if err := s.authorize(ctx, auth, id); err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.repo.SetPremium(ctx, id, value)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, mapItemErr(err))
	}
	item.URL = NormalizeURL(item.URL)

	s.log.Info("premium flag changed",
		slog.String("op", op),
		slog.Int64("id", id),
		slog.Bool("is_premium", value),
	)

	return item, nil
}

// ClearAllPremium is not atomic against concurrent SetPremium calls.
func (s *GalleryService) ClearAllPremium(ctx context.Context) (int64, error) {
	const op = "service.GalleryService.ClearAllPremium"

	n, err := s.repo.ClearAllPremium(ctx)
	if err != nil {
		s.log.Error("failed to clear premium flags", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	s.log.Info("premium flags cleared", slog.String("op", op), slog.Int64("count", n))

	return n, nil
}

// Delete removes the row first, then its files. File removal failures are
// logged only.
func (s *GalleryService) Delete(ctx context.Context, auth *models.AuthContext, id int64) (models.GalleryItem, error) {
	const op = "service.GalleryService.Delete"

	if err := s.authorize(ctx, auth, id); err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := s.repo.Delete(ctx, id)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, mapItemErr(err))
	}

	if name, ok := localArtifactName(item.URL); ok {
		if err := s.artifacts.Delete(ctx, name); err != nil {
			s.log.Warn("failed to delete artifact files",
				slog.String("op", op),
				slog.Int64("id", id),
				slog.String("name", name),
				sl.Err(err),
			)
		}
	}

	item.URL = NormalizeURL(item.URL)

	return item, nil
}

func (s *GalleryService) authorize(ctx context.Context, auth *models.AuthContext, id int64) error {
	if auth == nil {
		return apperror.Unauthenticated()
	}
	if auth.IsAdmin() {
		return nil
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapItemErr(err)
	}
	if !auth.CanActOn(item.UploaderID) {
		return apperror.Forbidden()
	}

	return nil
}

func localArtifactName(url string) (string, bool) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") || url == "" {
		return "", false
	}

	name := path.Base(strings.ReplaceAll(url, "\\", "/"))
	if name == "." || name == "/" {
		return "", false
	}

	return name, true
}

func mapItemErr(err error) error {
	if errors.Is(err, storage.ErrItemNotFound) {
		return apperror.NotFound("Item not found")
	}

	return apperror.Database(err)
}
