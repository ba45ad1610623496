// Package controller holds the application state of the journal client: the
// signed-in user, the current view, the listed entries and the entry under
// edit. It is the only writer of that state and talks to the entry store
// exclusively through the persistence gateway.
//
// A Controller is driven by one caller at a time. Each operation runs its
// remote calls sequentially and changes state only after they resolve.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/logging"
	"github.com/dmitrijs2005/gophjournal/internal/timex"
	"github.com/google/uuid"
)

// State is the view currently on screen.
type State int

const (
	Unauthenticated State = iota
	Loading
	Dashboard
	Editing
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case Dashboard:
		return "dashboard"
	case Editing:
		return "editing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// NewEntryTitleLayout formats the default title of a fresh entry.
const NewEntryTitleLayout = "Monday, January 2, 2006"

var (
	ErrInvalidTransition  = errors.New("action not available in the current view")
	ErrBusy               = errors.New("another action is still in progress")
	ErrUnknownEntry       = errors.New("no such entry")
	ErrEmptyContent       = errors.New("entry content is empty")
	ErrNotSaved           = errors.New("entry has not been saved yet")
	ErrAnnotatorDisabled  = errors.New("AI annotation is not available")
	ErrConfirmationNeeded = errors.New("check your inbox and confirm your e-mail, then sign in")
)

// Identity is the identity provider as seen by the controller.
type Identity interface {
	CurrentSession(ctx context.Context) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password, name string) (models.SignupResult, error)
	ConfirmEmail(ctx context.Context, email, code string) error
	SignOut(ctx context.Context) error
}

// Gateway is the persistence gateway.
type Gateway interface {
	FetchAll(ctx context.Context, ownerID string) []models.JournalEntry
	Save(ctx context.Context, e models.JournalEntry) error
	Delete(ctx context.Context, entryID, ownerID string) error
	Export(ctx context.Context, ownerID string) (string, error)
}

// Annotator produces an AI insight for an entry.
type Annotator interface {
	Annotate(ctx context.Context, title, content string) (*models.Insight, error)
}

type Controller struct {
	identity  Identity
	gateway   Gateway
	annotator Annotator
	logger    logging.Logger

	now   func() time.Time
	newID func() string

	state   State
	session *models.Session
	entries []models.JournalEntry
	draft   *models.JournalEntry
	isNew   bool
	busy    bool
	notice  string
}

// New builds a controller in the Unauthenticated state. annotator may be
// nil, in which case Annotate reports ErrAnnotatorDisabled.
func New(identity Identity, gateway Gateway, annotator Annotator, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{
		identity:  identity,
		gateway:   gateway,
		annotator: annotator,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
		state:     Unauthenticated,
		entries:   []models.JournalEntry{},
	}
}

func (c *Controller) State() State { return c.state }

// Busy reports whether a remote call is in flight.
func (c *Controller) Busy() bool { return c.busy }

// Notice is the last user-facing error message, empty after a successful
// action.
func (c *Controller) Notice() string { return c.notice }

// User returns the signed-in user, or nil.
func (c *Controller) User() *models.User {
	if c.session == nil {
		return nil
	}
	u := c.session.User
	return &u
}

// Entries returns a copy of the listed entries, newest first.
func (c *Controller) Entries() []models.JournalEntry {
	out := make([]models.JournalEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Clone()
	}
	return out
}

// Search returns copies of the listed entries whose title or content
// contains term, ignoring case. Order is the list order; a blank term
// matches everything. Nothing is fetched.
func (c *Controller) Search(term string) []models.JournalEntry {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := []models.JournalEntry{}
	for _, e := range c.entries {
		if needle == "" ||
			strings.Contains(strings.ToLower(e.Title), needle) ||
			strings.Contains(strings.ToLower(e.Content), needle) {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Draft returns a copy of the entry under edit.
func (c *Controller) Draft() (models.JournalEntry, bool) {
	if c.draft == nil {
		return models.JournalEntry{}, false
	}
	return c.draft.Clone(), true
}

// IsNewDraft reports whether the draft has never been saved.
func (c *Controller) IsNewDraft() bool { return c.draft != nil && c.isNew }

// begin guards an action: it checks the view, rejects overlapping calls and
// marks the controller busy. The returned func must be deferred.
func (c *Controller) begin(allowed ...State) (func(), error) {
	if c.busy {
		return nil, ErrBusy
	}
	ok := false
	for _, s := range allowed {
		if c.state == s {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrInvalidTransition, c.state)
	}
	c.busy = true
	c.notice = ""
	return func() { c.busy = false }, nil
}

// fail records err as the user-facing notice and returns it.
func (c *Controller) fail(ctx context.Context, action string, err error) error {
	c.notice = err.Error()
	c.logger.Warn(ctx, action+" failed", "error", err)
	return err
}

// reload re-reads the owner's entries and lands on the dashboard. The list
// is always what the store returned, never a local merge.
func (c *Controller) reload(ctx context.Context) {
	c.state = Loading
	c.entries = c.gateway.FetchAll(ctx, c.session.User.ID)
	c.draft = nil
	c.isNew = false
	c.state = Dashboard
}

func (c *Controller) enter(ctx context.Context, sess *models.Session) {
	c.session = sess
	c.reload(ctx)
	c.logger.Info(ctx, "signed in", "user", sess.User.ID)
}

// Bootstrap restores a stored session, if any, and loads its entries.
func (c *Controller) Bootstrap(ctx context.Context) error {
	done, err := c.begin(Unauthenticated)
	if err != nil {
		return err
	}
	defer done()

	c.state = Loading
	sess, err := c.identity.CurrentSession(ctx)
	if err != nil {
		c.state = Unauthenticated
		return c.fail(ctx, "restore session", err)
	}
	if sess == nil {
		c.state = Unauthenticated
		return nil
	}
	c.enter(ctx, sess)
	return nil
}

func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	done, err := c.begin(Unauthenticated)
	if err != nil {
		return err
	}
	defer done()

	sess, err := c.identity.SignIn(ctx, email, password)
	if err != nil {
		return c.fail(ctx, "sign in", err)
	}
	c.enter(ctx, sess)
	return nil
}

// SignUp registers an account. A ConfirmationPending result keeps the
// controller Unauthenticated so the user can confirm and then sign in.
func (c *Controller) SignUp(ctx context.Context, email, password, name string) (models.SignupResult, error) {
	done, err := c.begin(Unauthenticated)
	if err != nil {
		return models.SignupResult{}, err
	}
	defer done()

	res, err := c.identity.SignUp(ctx, email, password, name)
	if err != nil {
		return models.SignupResult{}, c.fail(ctx, "sign up", err)
	}

	switch res.Status {
	case models.SignupAuthenticated:
		c.enter(ctx, res.Session)
	case models.SignupConfirmationPending:
		c.notice = ErrConfirmationNeeded.Error()
	}
	return res, nil
}

func (c *Controller) ConfirmEmail(ctx context.Context, email, code string) error {
	done, err := c.begin(Unauthenticated)
	if err != nil {
		return err
	}
	defer done()

	if err := c.identity.ConfirmEmail(ctx, email, code); err != nil {
		return c.fail(ctx, "confirm e-mail", err)
	}
	return nil
}

// Logout ends the session. The local state is cleared even if the server
// could not be told; that error is still surfaced.
func (c *Controller) Logout(ctx context.Context) error {
	done, err := c.begin(Dashboard)
	if err != nil {
		return err
	}
	defer done()

	c.state = Loading
	remoteErr := c.identity.SignOut(ctx)

	c.session = nil
	c.entries = []models.JournalEntry{}
	c.draft = nil
	c.state = Unauthenticated

	if remoteErr != nil {
		return c.fail(ctx, "sign out", remoteErr)
	}
	return nil
}

// NewEntry opens an editor on a fresh draft owned by the current user.
func (c *Controller) NewEntry() error {
	done, err := c.begin(Dashboard)
	if err != nil {
		return err
	}
	defer done()

	now := c.now()
	c.draft = &models.JournalEntry{
		ID:        c.newID(),
		UserID:    c.session.User.ID,
		Title:     now.Format(NewEntryTitleLayout),
		CreatedAt: timex.UnixMilli(now),
		UpdatedAt: timex.UnixMilli(now),
		Tags:      []string{},
	}
	c.isNew = true
	c.state = Editing
	return nil
}

// Select opens an editor on a copy of a listed entry.
func (c *Controller) Select(id string) error {
	done, err := c.begin(Dashboard)
	if err != nil {
		return err
	}
	defer done()

	for _, e := range c.entries {
		if e.ID == id {
			d := e.Clone()
			c.draft = &d
			c.isNew = false
			c.state = Editing
			return nil
		}
	}
	c.notice = ErrUnknownEntry.Error()
	return ErrUnknownEntry
}

func (c *Controller) editDraft(fn func(d *models.JournalEntry)) error {
	done, err := c.begin(Editing)
	if err != nil {
		return err
	}
	defer done()
	fn(c.draft)
	return nil
}

func (c *Controller) SetTitle(title string) error {
	return c.editDraft(func(d *models.JournalEntry) { d.Title = title })
}

func (c *Controller) SetContent(content string) error {
	return c.editDraft(func(d *models.JournalEntry) { d.Content = content })
}

// SetTags replaces the draft's tags, keeping order and dropping duplicates.
func (c *Controller) SetTags(tags []string) error {
	return c.editDraft(func(d *models.JournalEntry) { d.Tags = models.NormalizeTags(tags) })
}

// Save writes the draft and, once acknowledged, reloads the list and
// returns to the dashboard. On failure the editor stays open.
func (c *Controller) Save(ctx context.Context) error {
	done, err := c.begin(Editing)
	if err != nil {
		return err
	}
	defer done()

	if strings.TrimSpace(c.draft.Content) == "" {
		c.notice = ErrEmptyContent.Error()
		return ErrEmptyContent
	}

	e := c.draft.Clone()
	e.UserID = c.session.User.ID
	if strings.TrimSpace(e.Title) == "" {
		e.Title = common.UntitledEntry
	}

	if err := c.gateway.Save(ctx, e); err != nil {
		return c.fail(ctx, "save", err)
	}
	c.reload(ctx)
	return nil
}

// Cancel discards the draft.
func (c *Controller) Cancel() error {
	done, err := c.begin(Editing)
	if err != nil {
		return err
	}
	defer done()

	c.draft = nil
	c.isNew = false
	c.state = Dashboard
	return nil
}

// Delete removes the entry under edit, scoped to the current user, then
// reloads the list. On failure the editor stays open.
func (c *Controller) Delete(ctx context.Context) error {
	done, err := c.begin(Editing)
	if err != nil {
		return err
	}
	defer done()

	if c.isNew {
		c.notice = ErrNotSaved.Error()
		return ErrNotSaved
	}

	if err := c.gateway.Delete(ctx, c.draft.ID, c.session.User.ID); err != nil {
		return c.fail(ctx, "delete", err)
	}
	c.reload(ctx)
	return nil
}

// Annotate requests an AI insight for the draft and replaces any previous
// one wholesale. A failure leaves the previous insight untouched and never
// changes the view.
func (c *Controller) Annotate(ctx context.Context) error {
	done, err := c.begin(Editing)
	if err != nil {
		return err
	}
	defer done()

	if strings.TrimSpace(c.draft.Content) == "" {
		c.notice = ErrEmptyContent.Error()
		return ErrEmptyContent
	}
	if c.annotator == nil {
		c.notice = ErrAnnotatorDisabled.Error()
		return ErrAnnotatorDisabled
	}

	ins, err := c.annotator.Annotate(ctx, c.draft.Title, c.draft.Content)
	if err != nil {
		return c.fail(ctx, "annotate", err)
	}
	c.draft.AIInsight = &models.Insight{Summary: ins.Summary, Mood: ins.Mood, Advice: ins.Advice}
	return nil
}

// Export archives the user's entries and returns a download link.
func (c *Controller) Export(ctx context.Context) (string, error) {
	done, err := c.begin(Dashboard)
	if err != nil {
		return "", err
	}
	defer done()

	url, err := c.gateway.Export(ctx, c.session.User.ID)
	if err != nil {
		return "", c.fail(ctx, "export", err)
	}
	return url, nil
}
