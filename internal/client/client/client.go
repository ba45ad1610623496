package client

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
)

// Client is the transport-agnostic contract the rest of the CLI depends on.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password, name string) (models.SignupResult, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	ConfirmEmail(ctx context.Context, email, code string) error
	RestoreSession(ctx context.Context, refreshToken string) (*models.Session, error)
	SignOut(ctx context.Context) error
	SetTokens(accessToken, refreshToken string)

	ListEntries(ctx context.Context, userID string) ([]*rpc.EntryRow, error)
	UpsertEntry(ctx context.Context, row *rpc.EntryRow) error
	DeleteEntry(ctx context.Context, id, userID string) (int64, error)
	ExportEntries(ctx context.Context, userID string) (string, error)
}
