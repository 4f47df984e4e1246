package repository

import (
	"context"
	"errors"
	"fmt"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const galleryTable = "gallery_items"

var galleryColumns = []string{
	"id",
	"url",
	"title",
	"type",
	"content_rating",
	"is_premium",
	"tags",
	"description",
	"instagram",
	"twitter",
	"tiktok",
	"onlyfans",
	"uploader_id",
	"created_at",
}

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Insert сохраняет запись и возвращает её в том виде, в каком она попала в БД
func (r *GalleryRepo) Insert(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	const op = "repository.GalleryRepo.Insert"

	uploader := uuid.NullUUID{}
	if item.UploaderID != nil {
		uploader = uuid.NullUUID{UUID: *item.UploaderID, Valid: true}
	}

	query, args, err := r.sb.Insert(galleryTable).
		Columns(
			"url",
			"title",
			"type",
			"content_rating",
			"is_premium",
			"tags",
			"description",
			"instagram",
			"twitter",
			"tiktok",
			"onlyfans",
			"uploader_id",
		).
		Values(
			item.URL,
			item.Title,
			string(item.Type),
			string(item.ContentRating),
			item.IsPremium,
			item.Tags,
			item.Description,
			item.Instagram,
			item.Twitter,
			item.TikTok,
			item.OnlyFans,
			uploader,
		).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	created, err := scanGalleryItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// ListByType returns items of one collection, newest first. A nil premium
// returns both premium and free items.
func (r *GalleryRepo) ListByType(ctx context.Context, typ models.GalleryType, premium *bool) ([]models.GalleryItem, error) {
	const op = "repository.GalleryRepo.ListByType"

	builder := r.sb.Select(galleryColumns...).
		From(galleryTable).
		Where(squirrel.Eq{"type": string(typ)})

	if premium != nil {
		builder = builder.Where(squirrel.Eq{"is_premium": *premium})
	}

	query, args, err := builder.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := make([]models.GalleryItem, 0)
	for rows.Next() {
		item, err := scanGalleryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (r *GalleryRepo) GetByID(ctx context.Context, id int64) (models.GalleryItem, error) {
	const op = "repository.GalleryRepo.GetByID"

	query, args, err := r.sb.Select(galleryColumns...).
		From(galleryTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := scanGalleryItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (r *GalleryRepo) SetPremium(ctx context.Context, id int64, value bool) (models.GalleryItem, error) {
	const op = "repository.GalleryRepo.SetPremium"

	query, args, err := r.sb.Update(galleryTable).
		Set("is_premium", value).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := scanGalleryItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// ClearAllPremium снимает флаг премиума со всех записей и возвращает число
// реально изменённых строк
func (r *GalleryRepo) ClearAllPremium(ctx context.Context) (int64, error) {
	const op = "repository.GalleryRepo.ClearAllPremium"

	query, args, err := r.sb.Update(galleryTable).
		Set("is_premium", false).
		Where(squirrel.Eq{"is_premium": true}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}

// Delete removes the row and returns it so the caller can clean up its file.
func (r *GalleryRepo) Delete(ctx context.Context, id int64) (models.GalleryItem, error) {
	const op = "repository.GalleryRepo.Delete"

	query, args, err := r.sb.Delete(galleryTable).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	item, err := scanGalleryItem(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func returning() string {
	return "RETURNING " + joinColumns(galleryColumns)
}

func scanGalleryItem(row pgx.Row) (models.GalleryItem, error) {
	var (
		item     models.GalleryItem
		typ      string
		rating   string
		uploader uuid.NullUUID
	)

	err := row.Scan(
		&item.ID,
		&item.URL,
		&item.Title,
		&typ,
		&rating,
		&item.IsPremium,
		&item.Tags,
		&item.Description,
		&item.Instagram,
		&item.Twitter,
		&item.TikTok,
		&item.OnlyFans,
		&uploader,
		&item.CreatedAt,
	)
	if err != nil {
		return models.GalleryItem{}, err
	}

	item.Type = models.GalleryType(typ)
	item.ContentRating = models.ParseContentRating(rating)
	if uploader.Valid {
		id := uploader.UUID
		item.UploaderID = &id
	}
	if item.Tags == nil {
		item.Tags = models.Tags{}
	}

	return item, nil
}
