package gateway

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/rpc"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
)

var ErrInvalidRow = errors.New("invalid entry row")

// FromRow translates a wire row into a JournalEntry. Required fields are id,
// user_id, created_at and updated_at; tags default to an empty list and a
// missing annotation stays absent.
func FromRow(row *rpc.EntryRow) (models.JournalEntry, error) {
	if row == nil {
		return models.JournalEntry{}, fmt.Errorf("%w: nil row", ErrInvalidRow)
	}
	if row.ID == "" {
		return models.JournalEntry{}, fmt.Errorf("%w: missing id", ErrInvalidRow)
	}
	if row.UserID == "" {
		return models.JournalEntry{}, fmt.Errorf("%w: entry %s: missing user_id", ErrInvalidRow, row.ID)
	}

	created, err := timex.ParseMilli(row.CreatedAt)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: entry %s: created_at: %v", ErrInvalidRow, row.ID, err)
	}
	updated, err := timex.ParseMilli(row.UpdatedAt)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("%w: entry %s: updated_at: %v", ErrInvalidRow, row.ID, err)
	}

	e := models.JournalEntry{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Content:   row.Content,
		CreatedAt: created,
		UpdatedAt: updated,
		Tags:      append([]string{}, row.Tags...),
	}
	if row.AIInsight != nil {
		e.AIInsight = &models.Insight{
			Summary: row.AIInsight.Summary,
			Mood:    row.AIInsight.Mood,
			Advice:  row.AIInsight.Advice,
		}
	}
	return e, nil
}

// ToRow is the inverse of FromRow. It refuses entries without identity or
// creation time.
func ToRow(e models.JournalEntry) (*rpc.EntryRow, error) {
	switch {
	case e.ID == "":
		return nil, fmt.Errorf("%w: missing id", ErrInvalidRow)
	case e.UserID == "":
		return nil, fmt.Errorf("%w: entry %s: missing user id", ErrInvalidRow, e.ID)
	case e.CreatedAt <= 0:
		return nil, fmt.Errorf("%w: entry %s: missing creation time", ErrInvalidRow, e.ID)
	}

	row := &rpc.EntryRow{
		ID:        e.ID,
		UserID:    e.UserID,
		Title:     e.Title,
		Content:   e.Content,
		CreatedAt: timex.FormatMilli(e.CreatedAt),
		UpdatedAt: timex.FormatMilli(e.UpdatedAt),
		Tags:      append([]string{}, e.Tags...),
	}
	if e.AIInsight != nil {
		row.AIInsight = &rpc.Insight{
			Summary: e.AIInsight.Summary,
			Mood:    e.AIInsight.Mood,
			Advice:  e.AIInsight.Advice,
		}
	}
	return row, nil
}
