package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, tokenHash string, validity time.Duration) error
	Find(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Delete(ctx context.Context, tokenHash string) (int64, error)
}
