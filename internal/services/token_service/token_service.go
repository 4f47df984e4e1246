package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/lib/apperror"
	"premium_gallery/internal/lib/jwt"
	"premium_gallery/internal/lib/logger/sl"
	"premium_gallery/internal/repository"
	"premium_gallery/internal/storage"

	"github.com/google/uuid"
)

// Tokens is what a client receives after login. Token goes into the session
// cookie, Bearer is a signed JWT referencing the same session.
type Tokens struct {
	Token     string
	Bearer    string
	ExpiresAt time.Time
}

// TokenService issues and verifies server-side sessions.
type TokenService struct {
	log    *slog.Logger
	repo   repository.SessionRepository
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(log *slog.Logger, repo repository.SessionRepository, secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		log:    log,
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(ctx context.Context, user models.User) (Tokens, error) {
	const op = "token_service.Issue"

	token := uuid.NewString()
	now := s.now().UTC()

	session := models.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
	}

	if err := s.repo.SaveSession(ctx, token, session, s.ttl); err != nil {
		return Tokens{}, fmt.Errorf("%s: %w", op, err)
	}

	bearer, err := jwt.NewToken(user, token, s.secret, s.ttl)
	if err != nil {
		return Tokens{}, fmt.Errorf("%s: %w", op, err)
	}

	return Tokens{
		Token:     token,
		Bearer:    bearer,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

// Authenticate resolves a session token. It does not extend the session;
// see Extend.
func (s *TokenService) Authenticate(ctx context.Context, token string) (*models.AuthContext, error) {
	const op = "token_service.Authenticate"

	if token == "" {
		return nil, apperror.Unauthenticated()
	}

	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, apperror.Unauthenticated()
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return models.NewAuthContext(token, session), nil
}

// Extend slides the session expiry forward by the TTL and signs a new bearer
// for it.
func (s *TokenService) Extend(ctx context.Context, auth *models.AuthContext) (string, error) {
	const op = "token_service.Extend"

	if auth == nil {
		return "", apperror.Unauthenticated()
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", auth.UserID.String()),
	)

	if err := s.repo.TouchSession(ctx, auth.Token, s.ttl); err != nil {
		log.Warn("failed to extend session", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	bearer, err := jwt.NewToken(models.User{ID: auth.UserID, Role: auth.Role}, auth.Token, s.secret, s.ttl)
	if err != nil {
		log.Error("failed to sign bearer", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return bearer, nil
}

// AuthenticateBearer verifies a JWT and resolves the session it names.
func (s *TokenService) AuthenticateBearer(ctx context.Context, bearer string) (*models.AuthContext, error) {
	sid, err := jwt.ParseToken(bearer, s.secret)
	if err != nil {
		return nil, apperror.Unauthenticated()
	}

	return s.Authenticate(ctx, sid)
}

func (s *TokenService) Revoke(ctx context.Context, token string) error {
	const op = "token_service.Revoke"

	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
