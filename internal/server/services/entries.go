package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/server/models"
	"github.com/dmitrijs2005/gophjournal/internal/server/repositories/repomanager"
)

// EntryService is the server half of the persistence gateway. Every call is
// scoped to one user.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, repomanager: m}
}

func (s *EntryService) List(ctx context.Context, userID string) ([]*models.Entry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrorValidation)
	}
	return s.repomanager.Entries(s.db).SelectByUser(ctx, userID)
}

// Upsert inserts or replaces entry. An entry ID owned by another user yields
// common.ErrOwnershipConflict.
func (s *EntryService) Upsert(ctx context.Context, entry *models.Entry) error {
	if entry == nil || entry.ID == "" || entry.UserID == "" {
		return fmt.Errorf("%w: entry id and user id are required", common.ErrorValidation)
	}
	if entry.UpdatedAt.Before(entry.CreatedAt) {
		return fmt.Errorf("%w: updated_at precedes created_at", common.ErrorValidation)
	}
	return s.repomanager.Entries(s.db).Upsert(ctx, entry)
}

// Delete removes entry id if userID owns it and returns the affected count.
func (s *EntryService) Delete(ctx context.Context, id, userID string) (int64, error) {
	if id == "" || userID == "" {
		return 0, fmt.Errorf("%w: entry id and user id are required", common.ErrorValidation)
	}
	return s.repomanager.Entries(s.db).Delete(ctx, id, userID)
}
