package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/services/media"
	"premium_gallery/internal/storage"

	"github.com/google/uuid"
)

type ImageProcessor interface {
	Process(ctx context.Context, file *multipart.FileHeader, field string) (*media.Artifact, error)
	Discard(ctx context.Context, artifact *media.Artifact)
}

type MediaService struct {
	log    *slog.Logger
	repo   repository.MediaRepository
	images ImageProcessor
}

func NewMediaService(log *slog.Logger, repo repository.MediaRepository, images ImageProcessor) *MediaService {
	return &MediaService{
		log:    log,
		repo:   repo,
		images: images,
	}
}

// UploadContent processes a content upload and records it as a media row.
func (s *MediaService) UploadContent(ctx context.Context, auth *models.AuthContext, file *multipart.FileHeader, isPublic bool) (*models.Media, error) {
	const op = "media_service.UploadContent"

	if auth == nil {
		return nil, apperror.Unauthenticated()
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("uploader_id", auth.UserID.String()),
	)

	log.Info("upload media")

	artifact, err := s.images.Process(ctx, file, "file")
	if err != nil {
		log.Warn("upload rejected", sl.Err(err))

		return nil, err
	}

	m := models.NewMedia(auth.UserID, models.MediaTypePhoto, artifact.OriginalFilename, artifact.URL, artifact.Size)
	m.MimeType = artifact.MIME
	m.Width = &artifact.Width
	m.Height = &artifact.Height
	m.IsPublic = isPublic
	m.Metadata["name"] = artifact.Name

	if err := m.Validate(); err != nil {
		s.images.Discard(ctx, artifact)
		log.Error("media validation failed", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, apperror.BadRequest(apperror.CodeInvalidRequest, err.Error()))
	}

	created, err := s.repo.CreateMedia(ctx, m)
	if err != nil {
		s.images.Discard(ctx, artifact)
		log.Error("failed to save media to database", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	log.Info("media stored", slog.String("media_id", created.ID.String()))

	return created, nil
}

func (s *MediaService) ListMine(ctx context.Context, auth *models.AuthContext) ([]models.Media, error) {
	const op = "media_service.ListMine"

	if auth == nil {
		return nil, apperror.Unauthenticated()
	}

	items, err := s.repo.ListByUploader(ctx, auth.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}
	if items == nil {
		items = []models.Media{}
	}

	return items, nil
}

// Get returns a media row. Private rows are visible to their uploader and
// admins only.
func (s *MediaService) Get(ctx context.Context, auth *models.AuthContext, id uuid.UUID) (*models.Media, error) {
	const op = "media_service.Get"

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, fmt.Errorf("%s: %w", op, apperror.NotFound("Media not found"))
		}
		return nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	if !m.IsPublic && !auth.CanActOn(&m.UploaderID) {
		return nil, apperror.NotFound("Media not found")
	}

	return m, nil
}
