// Package services contains server-side business logic: the identity
// provider, the owner-scoped entry store and journal export.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/cryptox"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
)

const minPasswordLength = 6

// Session is an authenticated user together with a fresh token pair.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// SignUpResult holds either a Session or, when e-mail confirmation is
// required, ConfirmationRequired set and no Session.
type SignUpResult struct {
	Session              *Session
	ConfirmationRequired bool
}

// Notifier delivers confirmation codes to users.
type Notifier interface {
	SendConfirmation(ctx context.Context, email, code string) error
}

// LogNotifier "delivers" confirmation codes by writing them to the log.
type LogNotifier struct {
	Logger logging.Logger
}

func (n LogNotifier) SendConfirmation(ctx context.Context, email, code string) error {
	n.Logger.Info(ctx, "confirmation code issued", "email", email, "code", code)
	return nil
}

// IdentityService signs users up and in, confirms e-mail addresses and
// issues, rotates and revokes tokens.
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	notifier                     Notifier
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	requireConfirmation          bool
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, notifier Notifier, cfg *config.Config) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		notifier:                     notifier,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		requireConfirmation:          cfg.RequireEmailConfirmation,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return fmt.Errorf("%w: invalid e-mail address", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}
	return nil
}

// SignUp creates an account. With confirmation disabled the account is
// usable at once and a Session is returned.
func (s *IdentityService) SignUp(ctx context.Context, email, password, name string) (*SignUpResult, error) {
	email = normalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
		Confirmed:    !s.requireConfirmation,
	}

	var code string
	if s.requireConfirmation {
		var err error
		if code, err = common.MakeRandHexString(3); err != nil {
			return nil, common.ErrorInternal
		}
		user.ConfirmationCodeHash = cryptox.HashToken(code)
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if s.requireConfirmation {
		if err := s.notifier.SendConfirmation(ctx, u.Email, code); err != nil {
			return nil, fmt.Errorf("error sending confirmation: %w", err)
		}
		return &SignUpResult{ConfirmationRequired: true}, nil
	}

	session, err := s.newSession(ctx, u, s.db)
	if err != nil {
		return nil, err
	}
	return &SignUpResult{Session: session}, nil
}

// SignIn checks the password and returns a Session. Unknown e-mail and wrong
// password are indistinguishable to the caller.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.VerifyPassword([]byte(password), user.Salt, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Confirmed {
		return nil, common.ErrEmailNotConfirmed
	}
	return s.newSession(ctx, user, s.db)
}

// ConfirmEmail accepts the code sent at sign-up. Confirming an already
// confirmed account is a no-op.
func (s *IdentityService) ConfirmEmail(ctx context.Context, email, code string) error {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidConfirmation
		}
		return common.ErrorInternal
	}
	if user.Confirmed {
		return nil
	}
	if user.ConfirmationCodeHash == "" || cryptox.HashToken(strings.TrimSpace(code)) != user.ConfirmationCodeHash {
		return common.ErrInvalidConfirmation
	}
	if err := repo.Confirm(ctx, user.ID); err != nil {
		return fmt.Errorf("error confirming user: %w", err)
	}
	return nil
}

// RefreshSession validates a refresh token, rotates it transactionally, and
// returns a fresh Session. Expired tokens yield ErrRefreshTokenExpired.
func (s *IdentityService) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	digest := cryptox.HashToken(refreshToken)

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, digest)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var session *Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.RefreshTokens(tx).Delete(ctx, digest)
		if err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		// A concurrent refresh consumed the token after Find.
		if n == 0 {
			return common.ErrorUnauthorized
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		session, err = s.newSession(ctx, user, tx)
		return err
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut revokes refreshToken. Unknown tokens are ignored.
func (s *IdentityService) SignOut(ctx context.Context, refreshToken string) error {
	if _, err := s.repomanager.RefreshTokens(s.db).Delete(ctx, cryptox.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}

func (s *IdentityService) newSession(ctx context.Context, user *models.User, tx dbx.DBTX) (*Session, error) {
	access, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, cryptox.HashToken(refresh), s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
