package repository

import (
	"context"
	"errors"
	"fmt"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var mediaColumns = []string{
	"id",
	"uploader_id",
	"created_at",
	"media_type",
	"original_filename",
	"storage_path",
	"file_size",
	"mime_type",
	"width",
	"height",
	"is_public",
	"metadata",
}

type MediaRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewMediaRepository(db *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *MediaRepo) CreateMedia(ctx context.Context, media *models.Media) (*models.Media, error) {
	const op = "repository.media_repository.CreateMedia"

	query, args, err := r.sb.Insert("media").
		Columns(mediaColumns...).
		Values(
			media.ID,
			media.UploaderID,
			media.CreatedAt,
			string(media.MediaType),
			media.OriginalFilename,
			media.StoragePath,
			media.FileSize,
			media.MimeType,
			media.Width,
			media.Height,
			media.IsPublic,
			media.Metadata,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	created := *media
	err = r.db.QueryRow(ctx, query, args...).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &created, nil
}

func (r *MediaRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	const op = "repository.media_repository.FindByID"

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	media, err := scanMedia(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return media, nil
}

// ListByUploader возвращает загрузки пользователя, новые первыми
func (r *MediaRepo) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]models.Media, error) {
	const op = "repository.media_repository.ListByUploader"

	query, args, err := r.sb.Select(mediaColumns...).
		From("media").
		Where(sq.Eq{"uploader_id": uploaderID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, *m)
	}

	return result, rows.Err()
}

func scanMedia(row pgx.Row) (*models.Media, error) {
	var (
		media     models.Media
		mediaType string
	)

	err := row.Scan(
		&media.ID,
		&media.UploaderID,
		&media.CreatedAt,
		&mediaType,
		&media.OriginalFilename,
		&media.StoragePath,
		&media.FileSize,
		&media.MimeType,
		&media.Width,
		&media.Height,
		&media.IsPublic,
		&media.Metadata,
	)
	if err != nil {
		return nil, err
	}
	media.MediaType = models.MediaType(mediaType)

	return &media, nil
}
