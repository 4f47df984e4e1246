package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db           *pgxpool.Pool
	User         *UserRepo
	Creator      *CreatorRepo
	Gallery      *GalleryRepo
	Media        *MediaRepo
	Subscription *SubscriptionRepo
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewRepositoryFromPool(db), nil
}

func NewRepositoryFromPool(db *pgxpool.Pool) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepository(db),
		Creator:      NewCreatorRepository(db),
		Gallery:      NewGalleryRepo(db),
		Media:        NewMediaRepository(db),
		Subscription: NewSubscriptionRepository(db),
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) Close() {
	r.db.Close()
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
