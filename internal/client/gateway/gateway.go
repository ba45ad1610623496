// Package gateway mediates every read and write between the controller's
// in-memory state and the remote entry store. It holds no state of its own
// and scopes each operation to an owner.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

var (
	ErrSaveFailed         = errors.New("save failed")
	ErrDeleteFailed       = errors.New("delete failed")
	ErrNotFoundOrNotOwned = errors.New("entry not found, already deleted, or not owned by you")
	ErrIntegrity          = errors.New("data integrity error")
	ErrExportFailed       = errors.New("export failed")
	ErrMissingOwner       = errors.New("owner id is required")
)

// Store is the remote entry store as seen by the gateway.
type Store interface {
	ListEntries(ctx context.Context, userID string) ([]*rpc.EntryRow, error)
	UpsertEntry(ctx context.Context, row *rpc.EntryRow) error
	DeleteEntry(ctx context.Context, id, userID string) (int64, error)
	ExportEntries(ctx context.Context, userID string) (string, error)
}

type Gateway struct {
	store  Store
	logger logging.Logger
	now    func() time.Time
}

func New(store Store, logger logging.Logger) *Gateway {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{store: store, logger: logger, now: time.Now}
}

// FetchAll returns the owner's entries newest first, in the order the store
// produced them. It never fails: a store error yields an empty list and rows
// that are malformed or belong to someone else are skipped. Both are logged.
func (g *Gateway) FetchAll(ctx context.Context, ownerID string) []models.JournalEntry {
	if ownerID == "" {
		g.logger.Warn(ctx, "fetch skipped", "error", ErrMissingOwner)
		return []models.JournalEntry{}
	}

	rows, err := g.store.ListEntries(ctx, ownerID)
	if err != nil {
		g.logger.Error(ctx, "fetch entries failed", "owner", ownerID, "error", err)
		return []models.JournalEntry{}
	}

	out := make([]models.JournalEntry, 0, len(rows))
	for _, row := range rows {
		e, err := FromRow(row)
		if err != nil {
			g.logger.Warn(ctx, "entry row rejected", "owner", ownerID, "error", err)
			continue
		}
		if e.UserID != ownerID {
			g.logger.Warn(ctx, "foreign entry dropped", "owner", ownerID, "entry", e.ID)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Save writes the full entry, creating or replacing the row keyed by its id.
// UpdatedAt is stamped here and never precedes CreatedAt. The entry passed
// in is not modified.
func (g *Gateway) Save(ctx context.Context, e models.JournalEntry) error {
	e = e.Clone()
	e.UpdatedAt = max(timex.UnixMilli(g.now()), e.CreatedAt)

	row, err := ToRow(e)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if err := g.store.UpsertEntry(ctx, row); err != nil {
		g.logger.Error(ctx, "save entry failed", "entry", e.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	g.logger.Debug(ctx, "entry saved", "entry", e.ID)
	return nil
}

// Delete removes exactly one row matching both the entry id and the owner.
// Zero affected rows is reported as ErrNotFoundOrNotOwned, more than one as
// ErrIntegrity.
func (g *Gateway) Delete(ctx context.Context, entryID, ownerID string) error {
	if entryID == "" || ownerID == "" {
		return fmt.Errorf("%w: entry id and owner id are required", ErrDeleteFailed)
	}

	n, err := g.store.DeleteEntry(ctx, entryID, ownerID)
	if err != nil {
		g.logger.Error(ctx, "delete entry failed", "entry", entryID, "error", err)
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}

	switch {
	case n == 0:
		return ErrNotFoundOrNotOwned
	case n > 1:
		g.logger.Error(ctx, "delete affected more than one row", "entry", entryID, "count", n)
		return fmt.Errorf("%w: delete of %s affected %d rows", ErrIntegrity, entryID, n)
	}

	g.logger.Debug(ctx, "entry deleted", "entry", entryID)
	return nil
}

// Export asks the store to archive the owner's entries and returns a
// time-limited download URL.
func (g *Gateway) Export(ctx context.Context, ownerID string) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("%w: %w", ErrExportFailed, ErrMissingOwner)
	}

	url, err := g.store.ExportEntries(ctx, ownerID)
	if err != nil {
		g.logger.Error(ctx, "export failed", "owner", ownerID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return url, nil
}
