package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/services/media"
	"premium_gallery/internal/storage"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type ImageProcessor interface {
	Process(ctx context.Context, file *multipart.FileHeader, field string) (*media.Artifact, error)
	Discard(ctx context.Context, artifact *media.Artifact)
}

type CreatorService struct {
	log      *slog.Logger
	repo     repository.CreatorRepository
	images   ImageProcessor
	statuses *cache.Cache
}

func NewCreatorService(log *slog.Logger, repo repository.CreatorRepository, images ImageProcessor, statusTTL time.Duration) *CreatorService {
	return &CreatorService{
		log:      log,
		repo:     repo,
		images:   images,
		statuses: cache.New(statusTTL, 2*statusTTL),
	}
}

// Status returns the approval status of a creator. Lookups are cached for
// the configured TTL and invalidated on approve and reject.
func (s *CreatorService) Status(ctx context.Context, userID uuid.UUID) (models.CreatorStatus, error) {
	const op = "service.CreatorService.Status"

	key := userID.String()
	if v, ok := s.statuses.Get(key); ok {
		return v.(models.CreatorStatus), nil
	}

	profile, err := s.repo.CreatorByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrProfileNotFound) {
			return "", fmt.Errorf("%s: %w", op, apperror.NotFound("Creator not found"))
		}
		return "", fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	s.statuses.SetDefault(key, profile.Status)

	return profile.Status, nil
}

func (s *CreatorService) Profile(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error) {
	const op = "service.CreatorService.Profile"

	profile, err := s.repo.CreatorByUserID(ctx, userID)
	if err != nil {
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, mapProfileErr(err))
	}

	return profile, nil
}

// List возвращает профили авторов с указанным статусом; пустой статус - все
func (s *CreatorService) List(ctx context.Context, status string) ([]models.CreatorProfile, error) {
	const op = "service.CreatorService.List"

	st := models.CreatorStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperror.BadRequest(apperror.CodeInvalidRequest,
			"Invalid status. Allowed values: pending, approved, rejected")
	}

	profiles, err := s.repo.ListByStatus(ctx, st)
	if err != nil {
		s.log.Error("failed to list creators", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	return profiles, nil
}

func (s *CreatorService) Approve(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error) {
	return s.setStatus(ctx, userID, models.CreatorApproved)
}

func (s *CreatorService) Reject(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error) {
	return s.setStatus(ctx, userID, models.CreatorRejected)
}

func (s *CreatorService) setStatus(ctx context.Context, userID uuid.UUID, status models.CreatorStatus) (models.CreatorProfile, error) {
	const op = "service.CreatorService.setStatus"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID.String()),
		slog.String("status", string(status)),
	)

	profile, err := s.repo.SetStatus(ctx, userID, status)
	if err != nil {
		log.Warn("failed to change creator status", sl.Err(err))
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, mapProfileErr(err))
	}

	s.statuses.Delete(userID.String())
	log.Info("creator status changed")

	return profile, nil
}

func (s *CreatorService) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, bio string, categories []string) (models.CreatorProfile, error) {
	const op = "service.CreatorService.UpdateProfile"

	clean := make([]string, 0, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			clean = append(clean, c)
		}
	}

	profile, err := s.repo.UpdateProfile(ctx, userID, strings.TrimSpace(displayName), models.NullableString(bio), clean)
	if err != nil {
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, mapProfileErr(err))
	}

	return profile, nil
}

// UploadPhoto processes a profile photo and stores its URL on the profile.
func (s *CreatorService) UploadPhoto(ctx context.Context, userID uuid.UUID, file *multipart.FileHeader) (models.CreatorProfile, error) {
	const op = "service.CreatorService.UploadPhoto"

	artifact, err := s.images.Process(ctx, file, "photo")
	if err != nil {
		return models.CreatorProfile{}, err
	}

	profile, err := s.repo.SetPhoto(ctx, userID, artifact.URL)
	if err != nil {
		s.images.Discard(ctx, artifact)
		s.log.Error("failed to save profile photo",
			slog.String("op", op),
			slog.String("user_id", userID.String()),
			sl.Err(err),
		)
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, mapProfileErr(err))
	}

	return profile, nil
}

func mapProfileErr(err error) error {
	if errors.Is(err, storage.ErrProfileNotFound) {
		return apperror.NotFound("Creator not found")
	}

	return apperror.Database(err)
}
