package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/dbx"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/entries"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/users"
)

// --- in-memory repositories ---

type fakeUsers struct {
	byEmail   map[string]*models.User
	createErr error
	getErr    error
	confirmed []string
	nextID    int
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrUserAlreadyExists
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) Confirm(_ context.Context, id string) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Confirmed = true
			u.ConfirmationCodeHash = ""
			f.confirmed = append(f.confirmed, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeTokens struct {
	rows      map[string]*models.RefreshToken
	createErr error
	deleteErr error
	findErr   error

	// afterFind runs once a lookup succeeds, before the caller continues.
	afterFind func(hash string)
}

func newFakeTokens() *fakeTokens { return &fakeTokens{rows: map[string]*models.RefreshToken{}} }

func (f *fakeTokens) Create(_ context.Context, userID, hash string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[hash] = &models.RefreshToken{UserID: userID, Token: hash, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeTokens) Find(_ context.Context, hash string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.rows[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if f.afterFind != nil {
		f.afterFind(hash)
	}
	return t, nil
}

func (f *fakeTokens) Delete(_ context.Context, hash string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	if _, ok := f.rows[hash]; !ok {
		return 0, nil
	}
	delete(f.rows, hash)
	return 1, nil
}

type fakeEntries struct {
	rows      map[string]*models.Entry
	selectErr error
}

func newFakeEntries() *fakeEntries { return &fakeEntries{rows: map[string]*models.Entry{}} }

func (f *fakeEntries) SelectByUser(_ context.Context, userID string) ([]*models.Entry, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	out := []*models.Entry{}
	for _, e := range f.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntries) Upsert(_ context.Context, e *models.Entry) error {
	if cur, ok := f.rows[e.ID]; ok && cur.UserID != e.UserID {
		return common.ErrOwnershipConflict
	}
	f.rows[e.ID] = e
	return nil
}

func (f *fakeEntries) Delete(_ context.Context, id, userID string) (int64, error) {
	if cur, ok := f.rows[id]; ok && cur.UserID == userID {
		delete(f.rows, id)
		return 1, nil
	}
	return 0, nil
}

type fakeRepoManager struct {
	users   *fakeUsers
	tokens  *fakeTokens
	entries *fakeEntries
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{users: newFakeUsers(), tokens: newFakeTokens(), entries: newFakeEntries()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }
func (m *fakeRepoManager) Entries(dbx.DBTX) entries.Repository             { return m.entries }

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
