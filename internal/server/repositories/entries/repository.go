package entries

import (
	"context"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	SelectByUser(ctx context.Context, userID string) ([]*models.Entry, error)
	Upsert(ctx context.Context, entry *models.Entry) error
	Delete(ctx context.Context, id string, userID string) (int64, error)
}
