package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/logger/sl"
	services "premium_gallery/internal/services/token_service"
	"premium_gallery/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	RedirectAdmin          = "/admin/dashboard"
	RedirectCreator        = "/creator/dashboard"
	RedirectCreatorPending = "/creator/pending"
	RedirectFollower       = "/feed"
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	creators    CreatorStatusProvider
	sessions    SessionIssuer
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User, displayName string) (uuid.UUID, error)
	Exists(ctx context.Context, email, username string) (bool, error)
}

type UserProvider interface {
	UserByIdentifier(ctx context.Context, identifier string) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
}

type CreatorStatusProvider interface {
	Status(ctx context.Context, userID uuid.UUID) (models.CreatorStatus, error)
}

type SessionIssuer interface {
	Issue(ctx context.Context, user models.User) (services.Tokens, error)
	Revoke(ctx context.Context, token string) error
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        models.Role
	DisplayName string
}

type LoginResult struct {
	User     models.User
	Tokens   services.Tokens
	Redirect string
}

func New(log *slog.Logger, userSaver UserSaver, userProvider UserProvider, creators CreatorStatusProvider, sessions SessionIssuer) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		creators:    creators,
		sessions:    sessions,
	}
}

// Login authenticates by email or username and opens a new session.
func (a *Auth) Login(ctx context.Context, identifier, password string) (LoginResult, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("identifier", identifier),
	)

	log.Info("attempting to login user")

	user, err := a.usrProvider.UserByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found", sl.Err(err))

			return LoginResult{}, fmt.Errorf("%s: %w", op, apperror.InvalidCredentials())
		}
		log.Error("failed to get user", sl.Err(err))

		return LoginResult{}, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	if err := bcrypt.CompareHashAndPassword(user.Password, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return LoginResult{}, fmt.Errorf("%s: %w", op, apperror.InvalidCredentials())
	}

	tokens, err := a.sessions.Issue(ctx, user)
	if err != nil {
		log.Error("failed to create session", sl.Err(err))

		return LoginResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrProvider.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Warn("failed to update last login", sl.Err(err))
	}

	redirect, err := a.redirectFor(ctx, user)
	if err != nil {
		log.Warn("failed to resolve creator status", sl.Err(err))
		redirect = RedirectCreatorPending
	}

	log.Info("user logged in successfully")

	return LoginResult{
		User:     user,
		Tokens:   tokens,
		Redirect: redirect,
	}, nil
}

func (a *Auth) redirectFor(ctx context.Context, user models.User) (string, error) {
	switch user.Role {
	case models.RoleAdmin:
		return RedirectAdmin, nil
	case models.RoleCreator:
		status, err := a.creators.Status(ctx, user.ID)
		if err != nil {
			return "", err
		}
		if status == models.CreatorApproved {
			return RedirectCreator, nil
		}
		return RedirectCreatorPending, nil
	default:
		return RedirectFollower, nil
	}
}

// Register creates a creator or follower account. Admins are provisioned
// out of band.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (uuid.UUID, error) {
	const op = "auth.Register"

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", in.Email),
	)

	log.Info("register user")

	if in.Role != models.RoleCreator && in.Role != models.RoleFollower {
		return uuid.Nil, apperror.BadRequest(apperror.CodeInvalidRequest, "Role must be creator or follower")
	}

	exists, err := a.usrSaver.Exists(ctx, in.Email, in.Username)
	if err != nil {
		log.Error("failed to check user", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}
	if exists {
		return uuid.Nil, fmt.Errorf("%s: %w", op, apperror.Conflict("User already exists"))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = in.Username
	}

	id, err := a.usrSaver.SaveUser(ctx, models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: passHash,
		Role:     in.Role,
	}, displayName)
	if err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exist", sl.Err(err))

			return uuid.Nil, fmt.Errorf("%s: %w", op, apperror.Conflict("User already exists"))
		}

		log.Error("failed to save user", sl.Err(err))

		return uuid.Nil, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	log.Info("user registered", slog.String("user_id", id.String()))

	return id, nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	if err := a.sessions.Revoke(ctx, token); err != nil {
		a.log.Error("failed to revoke session", slog.String("op", op), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Me returns the current user record for an authenticated caller.
func (a *Auth) Me(ctx context.Context, auth *models.AuthContext) (models.User, error) {
	const op = "auth.Me"

	if auth == nil {
		return models.User{}, apperror.Unauthenticated()
	}

	user, err := a.usrProvider.GetUserByID(ctx, auth.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, apperror.Unauthenticated())
		}

		return models.User{}, fmt.Errorf("%s: %w", op, apperror.Database(err))
	}

	return user, nil
}
