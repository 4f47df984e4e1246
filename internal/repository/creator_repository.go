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
	"github.com/lib/pq"
)

var creatorColumns = []string{
	"id",
	"user_id",
	"display_name",
	"bio",
	"photo_url",
	"categories",
	"status",
	"created_at",
	"updated_at",
}

type CreatorRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewCreatorRepository(db *pgxpool.Pool) *CreatorRepo {
	return &CreatorRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *CreatorRepo) CreatorByUserID(ctx context.Context, userID uuid.UUID) (models.CreatorProfile, error) {
	const op = "repository.creator_repository.CreatorByUserID"

	query, args, err := r.sb.Select(creatorColumns...).
		From("creator_profiles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := scanCreator(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, storage.ErrProfileNotFound)
		}
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}

// ListByStatus returns creator profiles, oldest first. An empty status lists
// all of them.
func (r *CreatorRepo) ListByStatus(ctx context.Context, status models.CreatorStatus) ([]models.CreatorProfile, error) {
	const op = "repository.creator_repository.ListByStatus"

	builder := r.sb.Select(creatorColumns...).From("creator_profiles")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": string(status)})
	}

	query, args, err := builder.OrderBy("created_at ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	profiles := make([]models.CreatorProfile, 0)
	for rows.Next() {
		p, err := scanCreator(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func (r *CreatorRepo) SetStatus(ctx context.Context, userID uuid.UUID, status models.CreatorStatus) (models.CreatorProfile, error) {
	const op = "repository.creator_repository.SetStatus"

	return r.update(ctx, op, userID, sq.Eq{"status": string(status)})
}

func (r *CreatorRepo) SetPhoto(ctx context.Context, userID uuid.UUID, photoURL string) (models.CreatorProfile, error) {
	const op = "repository.creator_repository.SetPhoto"

	return r.update(ctx, op, userID, sq.Eq{"photo_url": photoURL})
}

// UpdateProfile меняет отображаемое имя, описание и категории
func (r *CreatorRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName string, bio *string, categories []string) (models.CreatorProfile, error) {
	const op = "repository.creator_repository.UpdateProfile"

	if categories == nil {
		categories = []string{}
	}

	return r.update(ctx, op, userID, sq.Eq{
		"display_name": displayName,
		"bio":          bio,
		"categories":   pq.Array(categories),
	})
}

func (r *CreatorRepo) update(ctx context.Context, op string, userID uuid.UUID, set sq.Eq) (models.CreatorProfile, error) {
	builder := r.sb.Update("creator_profiles").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"user_id": userID})

	for col, val := range set {
		builder = builder.Set(col, val)
	}

	query, args, err := builder.Suffix("RETURNING " + joinColumns(creatorColumns)).ToSql()
	if err != nil {
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := scanCreator(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, storage.ErrProfileNotFound)
		}
		return models.CreatorProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}

func scanCreator(row pgx.Row) (models.CreatorProfile, error) {
	var (
		p          models.CreatorProfile
		status     string
		categories pq.StringArray
	)

	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.DisplayName,
		&p.Bio,
		&p.PhotoURL,
		&categories,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return models.CreatorProfile{}, err
	}

	p.Status = models.CreatorStatus(status)
	p.Categories = []string(categories)
	if p.Categories == nil {
		p.Categories = []string{}
	}

	return p, nil
}
