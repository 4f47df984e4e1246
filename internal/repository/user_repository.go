package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

type UserRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewUserRepository(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveUser creates the user together with its role profile in one
// transaction. Creators start out pending.
func (r *UserRepo) SaveUser(ctx context.Context, user models.User, displayName string) (uuid.UUID, error) {
	const op = "repository.user_repository.SaveUser"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	query, args, err := r.sb.Insert("users").
		Columns(
			"username",
			"email",
			"password",
			"role",
			"last_login",
		).
		Values(
			user.Username,
			strings.ToLower(user.Email),
			user.Password,
			string(user.Role),
			time.Now().UTC(),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var profile sq.InsertBuilder
	switch user.Role {
	case models.RoleCreator:
		profile = r.sb.Insert("creator_profiles").
			Columns("user_id", "display_name", "status").
			Values(id, displayName, string(models.CreatorPending))
	case models.RoleFollower:
		profile = r.sb.Insert("follower_profiles").
			Columns("user_id", "display_name").
			Values(id, displayName)
	}

	if user.Role == models.RoleCreator || user.Role == models.RoleFollower {
		query, args, err = profile.ToSql()
		if err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return uuid.Nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UserByIdentifier ищет пользователя по email или username
func (r *UserRepo) UserByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	const op = "repository.user_repository.UserByIdentifier"

	identifier = strings.TrimSpace(identifier)

	return r.userWhere(ctx, op, sq.Or{
		sq.Eq{"email": strings.ToLower(identifier)},
		sq.Eq{"username": identifier},
	})
}

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	const op = "repository.user_repository.GetUserByID"

	return r.userWhere(ctx, op, sq.Eq{"id": userID})
}

// Exists reports whether the email or username is taken.
func (r *UserRepo) Exists(ctx context.Context, email, username string) (bool, error) {
	const op = "repository.user_repository.Exists"

	query, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("users").
		Where(sq.Or{
			sq.Eq{"email": strings.ToLower(email)},
			sq.Eq{"username": username},
		}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.user_repository.UpdateLastLogin"

	query, args, err := r.sb.Update("users").
		Set("last_login", time.Now().UTC()).
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *UserRepo) userWhere(ctx context.Context, op string, pred sq.Sqlizer) (models.User, error) {
	query, args, err := r.sb.Select("id", "username", "email", "password", "role", "created_at", "last_login").
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var (
		user models.User
		role string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&role,
		&user.CreatedAt,
		&user.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	user.Role = models.Role(role)

	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
