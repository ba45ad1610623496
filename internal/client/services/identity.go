// Package services contains application services for the gophjournal client.
// This file defines the identity service: sign up, sign in, e-mail
// confirmation, sign out, and restoring the session handle kept on disk.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
)

// IdentityClient is the part of the remote client the identity service uses.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password, name string) (models.SignupResult, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	ConfirmEmail(ctx context.Context, email, code string) error
	RestoreSession(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context) error
}

// SessionStore keeps the session handle between runs.
type SessionStore interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	SaveTokens(ctx context.Context, accessToken, refreshToken string) error
	Clear(ctx context.Context) error
}

type IdentityService struct {
	client IdentityClient
	store  SessionStore
	logger logging.Logger
}

func NewIdentityService(c IdentityClient, store SessionStore, logger logging.Logger) *IdentityService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &IdentityService{client: c, store: store, logger: logger}
}

// CurrentSession restores the stored session by exchanging its refresh
// token. It returns (nil, nil) when there is no session or the server no
// longer accepts it; a stale handle is wiped in that case.
func (s *IdentityService) CurrentSession(ctx context.Context) (*models.Session, error) {
	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if stored == nil {
		return nil, nil
	}

	sess, err := s.client.RestoreSession(ctx, stored.RefreshToken)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.logger.Info(ctx, "stored session rejected, signing out locally")
			if err := s.store.Clear(ctx); err != nil {
				s.logger.Warn(ctx, "clearing session failed", "error", err)
			}
			return nil, nil
		}
		return nil, err
	}

	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Warn(ctx, "saving session failed", "error", err)
	}
	return sess, nil
}

func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	sess, err := s.client.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		s.logger.Warn(ctx, "saving session failed", "error", err)
	}
	return sess, nil
}

// SignUp registers an account. A pending confirmation is a successful
// result, not an error.
func (s *IdentityService) SignUp(ctx context.Context, email, password, name string) (models.SignupResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = common.DefaultUserName
	}

	res, err := s.client.SignUp(ctx, normalizeEmail(email), password, name)
	if err != nil {
		return models.SignupResult{}, err
	}
	if res.Status == models.SignupAuthenticated && res.Session != nil {
		if err := s.store.Save(ctx, res.Session); err != nil {
			s.logger.Warn(ctx, "saving session failed", "error", err)
		}
	}
	return res, nil
}

func (s *IdentityService) ConfirmEmail(ctx context.Context, email, code string) error {
	return s.client.ConfirmEmail(ctx, normalizeEmail(email), strings.TrimSpace(code))
}

// SignOut always forgets the local handle, even if revoking it on the
// server failed. The server error is still returned.
func (s *IdentityService) SignOut(ctx context.Context) error {
	remoteErr := s.client.SignOut(ctx)
	if remoteErr != nil {
		s.logger.Warn(ctx, "remote sign out failed", "error", remoteErr)
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return remoteErr
}

// PersistTokens matches client.TokenListener and records rotated tokens.
func (s *IdentityService) PersistTokens(ctx context.Context, accessToken, refreshToken string) {
	if err := s.store.SaveTokens(ctx, accessToken, refreshToken); err != nil {
		s.logger.Warn(ctx, "persisting rotated tokens failed", "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
