package metadata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
)

const (
	keyUserID       = "user_id"
	keyEmail        = "email"
	keyName         = "name"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// SessionStore persists the identity session handle between runs. All keys
// are written in one transaction so a crash never leaves half a session.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Load returns (nil, nil) when no complete session is stored.
func (s *SessionStore) Load(ctx context.Context) (*models.Session, error) {
	repo := NewSQLiteRepository(s.db)

	values := make(map[string]string, 5)
	for _, k := range []string{keyUserID, keyEmail, keyName, keyAccessToken, keyRefreshToken} {
		v, err := repo.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		values[k] = string(v)
	}

	if values[keyUserID] == "" || values[keyRefreshToken] == "" {
		return nil, nil
	}

	return &models.Session{
		User: models.User{
			ID:    values[keyUserID],
			Email: values[keyEmail],
			Name:  values[keyName],
		},
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
	}, nil
}

func (s *SessionStore) Save(ctx context.Context, session *models.Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		pairs := [][2]string{
			{keyUserID, session.User.ID},
			{keyEmail, session.User.Email},
			{keyName, session.User.Name},
			{keyAccessToken, session.AccessToken},
			{keyRefreshToken, session.RefreshToken},
		}
		for _, p := range pairs {
			if err := repo.Set(ctx, p[0], []byte(p[1])); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
		}
		return nil
	})
}

// SaveTokens replaces only the token pair of the stored session.
func (s *SessionStore) SaveTokens(ctx context.Context, accessToken, refreshToken string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyAccessToken, []byte(accessToken)); err != nil {
			return err
		}
		return repo.Set(ctx, keyRefreshToken, []byte(refreshToken))
	})
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return NewSQLiteRepository(s.db).Clear(ctx)
}
