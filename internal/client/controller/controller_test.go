package controller

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeIdentity struct {
	current    *models.Session
	currentErr error
	signIn     *models.Session
	signInErr  error
	signUp     models.SignupResult
	signUpErr  error
	confirmErr error
	signOutErr error

	signOuts int
}

func (f *fakeIdentity) CurrentSession(context.Context) (*models.Session, error) {
	return f.current, f.currentErr
}
func (f *fakeIdentity) SignIn(context.Context, string, string) (*models.Session, error) {
	return f.signIn, f.signInErr
}
func (f *fakeIdentity) SignUp(context.Context, string, string, string) (models.SignupResult, error) {
	return f.signUp, f.signUpErr
}
func (f *fakeIdentity) ConfirmEmail(context.Context, string, string) error { return f.confirmErr }
func (f *fakeIdentity) SignOut(context.Context) error {
	f.signOuts++
	return f.signOutErr
}

// fakeGateway keeps rows per id and logs every call in order.
type fakeGateway struct {
	rows  map[string]models.JournalEntry
	calls []string

	saveErr   error
	deleteErr error
	exportURL string
	exportErr error

	lastDeleteOwner string
	onCall          func()
}

func newFakeGateway(entries ...models.JournalEntry) *fakeGateway {
	g := &fakeGateway{rows: map[string]models.JournalEntry{}}
	for _, e := range entries {
		g.rows[e.ID] = e
	}
	return g
}

func (g *fakeGateway) hook(name string) {
	g.calls = append(g.calls, name)
	if g.onCall != nil {
		g.onCall()
	}
}

func (g *fakeGateway) FetchAll(_ context.Context, ownerID string) []models.JournalEntry {
	g.hook("fetch")
	out := []models.JournalEntry{}
	for _, e := range g.rows {
		if e.UserID == ownerID {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out
}

func (g *fakeGateway) Save(_ context.Context, e models.JournalEntry) error {
	g.hook("save")
	if g.saveErr != nil {
		return g.saveErr
	}
	g.rows[e.ID] = e.Clone()
	return nil
}

func (g *fakeGateway) Delete(_ context.Context, id, owner string) error {
	g.hook("delete")
	g.lastDeleteOwner = owner
	if g.deleteErr != nil {
		return g.deleteErr
	}
	delete(g.rows, id)
	return nil
}

func (g *fakeGateway) Export(context.Context, string) (string, error) {
	g.hook("export")
	return g.exportURL, g.exportErr
}

type fakeAnnotator struct {
	ins   *models.Insight
	err   error
	calls int
}

func (a *fakeAnnotator) Annotate(context.Context, string, string) (*models.Insight, error) {
	a.calls++
	return a.ins, a.err
}

// ---- helpers ----

var fixedNow = time.Date(2024, time.May, 6, 9, 30, 0, 0, time.UTC)

func ann() *models.Session {
	return &models.Session{User: models.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}, RefreshToken: "R"}
}

func entry(id string, created int64) models.JournalEntry {
	return models.JournalEntry{ID: id, UserID: "u1", Title: id, Content: "text " + id, CreatedAt: created, UpdatedAt: created, Tags: []string{}}
}

func newController(id *fakeIdentity, gw *fakeGateway, an Annotator) *Controller {
	c := New(id, gw, an, nil)
	c.now = func() time.Time { return fixedNow }
	c.newID = func() string { return "new-id" }
	return c
}

func signedIn(t *testing.T, gw *fakeGateway, an Annotator) *Controller {
	t.Helper()
	c := newController(&fakeIdentity{current: ann()}, gw, an)
	require.NoError(t, c.Bootstrap(context.Background()))
	require.Equal(t, Dashboard, c.State())
	gw.calls = nil
	return c
}

// ---- session ----

func TestBootstrap_NoSession(t *testing.T) {
	gw := newFakeGateway()
	c := newController(&fakeIdentity{}, gw, nil)

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, Unauthenticated, c.State())
	assert.Nil(t, c.User())
	assert.Empty(t, gw.calls)
	assert.False(t, c.Busy())
}

func TestBootstrap_RestoresSessionAndLoads(t *testing.T) {
	gw := newFakeGateway(entry("a", 1000), entry("b", 3000))
	c := newController(&fakeIdentity{current: ann()}, gw, nil)

	require.NoError(t, c.Bootstrap(context.Background()))
	assert.Equal(t, Dashboard, c.State())
	assert.Equal(t, "u1", c.User().ID)
	got := c.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
}

func TestBootstrap_Error(t *testing.T) {
	c := newController(&fakeIdentity{currentErr: errors.New("server unavailable")}, newFakeGateway(), nil)

	require.Error(t, c.Bootstrap(context.Background()))
	assert.Equal(t, Unauthenticated, c.State())
	assert.Equal(t, "server unavailable", c.Notice())
}

func TestSignIn(t *testing.T) {
	id := &fakeIdentity{signInErr: common.ErrInvalidCredentials}
	gw := newFakeGateway(entry("a", 1000))
	c := newController(id, gw, nil)
	ctx := context.Background()

	err := c.SignIn(ctx, "ann@example.com", "bad")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, Unauthenticated, c.State())
	assert.Equal(t, "invalid login credentials", c.Notice())

	id.signInErr = nil
	id.signIn = ann()
	require.NoError(t, c.SignIn(ctx, "ann@example.com", "good"))
	assert.Equal(t, Dashboard, c.State())
	assert.Empty(t, c.Notice())
	assert.Len(t, c.Entries(), 1)

	require.ErrorIs(t, c.SignIn(ctx, "x", "y"), ErrInvalidTransition)
}

func TestSignUp_ConfirmationPendingStaysOnAuth(t *testing.T) {
	gw := newFakeGateway()
	c := newController(&fakeIdentity{signUp: models.ConfirmationPending("ann@example.com")}, gw, nil)

	res, err := c.SignUp(context.Background(), "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, models.SignupConfirmationPending, res.Status)
	assert.Equal(t, Unauthenticated, c.State())
	assert.Equal(t, ErrConfirmationNeeded.Error(), c.Notice())
	assert.Empty(t, gw.calls)
}

func TestSignUp_Authenticated(t *testing.T) {
	gw := newFakeGateway()
	c := newController(&fakeIdentity{signUp: models.Authenticated(ann())}, gw, nil)

	res, err := c.SignUp(context.Background(), "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, models.SignupAuthenticated, res.Status)
	assert.Equal(t, Dashboard, c.State())
	assert.Equal(t, []string{"fetch"}, gw.calls)
}

func TestSignUp_Error(t *testing.T) {
	c := newController(&fakeIdentity{signUpErr: common.ErrUserAlreadyExists}, newFakeGateway(), nil)

	_, err := c.SignUp(context.Background(), "ann@example.com", "secret1", "Ann")
	require.ErrorIs(t, err, common.ErrUserAlreadyExists)
	assert.Equal(t, "user already registered", c.Notice())
}

func TestConfirmEmail(t *testing.T) {
	id := &fakeIdentity{confirmErr: common.ErrInvalidConfirmation}
	c := newController(id, newFakeGateway(), nil)

	require.ErrorIs(t, c.ConfirmEmail(context.Background(), "a@b.c", "000000"), common.ErrInvalidConfirmation)
	id.confirmErr = nil
	require.NoError(t, c.ConfirmEmail(context.Background(), "a@b.c", "abc123"))
	assert.Equal(t, Unauthenticated, c.State())
}

func TestLogout(t *testing.T) {
	id := &fakeIdentity{current: ann()}
	gw := newFakeGateway(entry("a", 1000))
	c := newController(id, gw, nil)
	ctx := context.Background()
	require.NoError(t, c.Bootstrap(ctx))

	require.NoError(t, c.NewEntry())
	require.ErrorIs(t, c.Logout(ctx), ErrInvalidTransition)
	require.NoError(t, c.Cancel())

	require.NoError(t, c.Logout(ctx))
	assert.Equal(t, Unauthenticated, c.State())
	assert.Nil(t, c.User())
	assert.Empty(t, c.Entries())
	assert.Equal(t, 1, id.signOuts)
}

func TestLogout_RemoteFailureStillSignsOutLocally(t *testing.T) {
	id := &fakeIdentity{current: ann(), signOutErr: errors.New("server unavailable")}
	c := newController(id, newFakeGateway(), nil)
	require.NoError(t, c.Bootstrap(context.Background()))

	require.Error(t, c.Logout(context.Background()))
	assert.Equal(t, Unauthenticated, c.State())
	assert.Equal(t, "server unavailable", c.Notice())
}

// ---- editing ----

func TestNewEntry_Defaults(t *testing.T) {
	c := signedIn(t, newFakeGateway(), nil)

	require.NoError(t, c.NewEntry())
	assert.Equal(t, Editing, c.State())
	assert.True(t, c.IsNewDraft())

	d, ok := c.Draft()
	require.True(t, ok)
	assert.Equal(t, "new-id", d.ID)
	assert.Equal(t, "u1", d.UserID)
	assert.Equal(t, "Monday, May 6, 2024", d.Title)
	assert.Equal(t, fixedNow.UnixMilli(), d.CreatedAt)
	assert.NotNil(t, d.Tags)
	assert.Empty(t, d.Tags)
	assert.Nil(t, d.AIInsight)
}

func TestNewEntry_RealIDsAreUnique(t *testing.T) {
	c := New(&fakeIdentity{current: ann()}, newFakeGateway(), nil, nil)
	require.NoError(t, c.Bootstrap(context.Background()))

	require.NoError(t, c.NewEntry())
	d1, _ := c.Draft()
	require.NoError(t, c.Cancel())
	require.NoError(t, c.NewEntry())
	d2, _ := c.Draft()

	assert.NotEmpty(t, d1.ID)
	assert.NotEqual(t, d1.ID, d2.ID)
}

func TestSelect(t *testing.T) {
	c := signedIn(t, newFakeGateway(entry("a", 1000)), nil)

	require.ErrorIs(t, c.Select("zzz"), ErrUnknownEntry)
	assert.Equal(t, Dashboard, c.State())

	require.NoError(t, c.Select("a"))
	assert.Equal(t, Editing, c.State())
	assert.False(t, c.IsNewDraft())

	require.NoError(t, c.SetContent("changed"))
	assert.Equal(t, "text a", c.Entries()[0].Content, "draft must not alias the list")
}

func TestCancel(t *testing.T) {
	gw := newFakeGateway(entry("a", 1000))
	c := signedIn(t, gw, nil)

	require.NoError(t, c.Select("a"))
	require.NoError(t, c.SetTitle("other"))
	require.NoError(t, c.Cancel())

	assert.Equal(t, Dashboard, c.State())
	_, ok := c.Draft()
	assert.False(t, ok)
	assert.Empty(t, gw.calls)
	require.ErrorIs(t, c.Cancel(), ErrInvalidTransition)
}

func TestSetTags_Normalizes(t *testing.T) {
	c := signedIn(t, newFakeGateway(), nil)
	require.NoError(t, c.NewEntry())

	require.NoError(t, c.SetTags([]string{"work", " #work", "gym", ""}))
	d, _ := c.Draft()
	assert.Equal(t, []string{"work", "gym"}, d.Tags)
}

func TestEditsRequireEditing(t *testing.T) {
	c := signedIn(t, newFakeGateway(), nil)
	require.ErrorIs(t, c.SetTitle("x"), ErrInvalidTransition)
	require.ErrorIs(t, c.SetContent("x"), ErrInvalidTransition)
	require.ErrorIs(t, c.Save(context.Background()), ErrInvalidTransition)
	require.ErrorIs(t, c.Delete(context.Background()), ErrInvalidTransition)
}

// ---- save ----

func TestSave_SavesThenRefetchesThenShowsDashboard(t *testing.T) {
	gw := newFakeGateway(entry("old", 1000))
	c := signedIn(t, gw, nil)

	require.NoError(t, c.NewEntry())
	require.NoError(t, c.SetContent("Hello"))
	require.NoError(t, c.Save(context.Background()))

	assert.Equal(t, []string{"save", "fetch"}, gw.calls)
	assert.Equal(t, Dashboard, c.State())
	got := c.Entries()
	require.Len(t, got, 2)
	assert.Equal(t, "new-id", got[0].ID)
	_, ok := c.Draft()
	assert.False(t, ok)
}

func TestSave_EmptyContentRefused(t *testing.T) {
	gw := newFakeGateway()
	c := signedIn(t, gw, nil)
	require.NoError(t, c.NewEntry())
	require.NoError(t, c.SetContent("   "))

	require.ErrorIs(t, c.Save(context.Background()), ErrEmptyContent)
	assert.Equal(t, Editing, c.State())
	assert.Empty(t, gw.calls)
}

func TestSave_UntitledAndOwnerFromSession(t *testing.T) {
	gw := newFakeGateway()
	c := signedIn(t, gw, nil)
	require.NoError(t, c.NewEntry())
	require.NoError(t, c.SetTitle("  "))
	require.NoError(t, c.SetContent("body"))
	c.draft.UserID = "intruder"

	require.NoError(t, c.Save(context.Background()))
	saved := gw.rows["new-id"]
	assert.Equal(t, common.UntitledEntry, saved.Title)
	assert.Equal(t, "u1", saved.UserID)
}

func TestSave_FailureStaysInEditor(t *testing.T) {
	gw := newFakeGateway()
	gw.saveErr = errors.New("save failed: server unavailable")
	c := signedIn(t, gw, nil)
	require.NoError(t, c.NewEntry())
	require.NoError(t, c.SetContent("keep me"))

	require.Error(t, c.Save(context.Background()))
	assert.Equal(t, Editing, c.State())
	assert.Equal(t, "save failed: server unavailable", c.Notice())
	assert.Equal(t, []string{"save"}, gw.calls)
	d, ok := c.Draft()
	require.True(t, ok)
	assert.Equal(t, "keep me", d.Content)
}

func TestSave_BusyDuringRemoteCall(t *testing.T) {
	gw := newFakeGateway()
	c := signedIn(t, gw, nil)
	require.NoError(t, c.NewEntry())
	require.NoError(t, c.SetContent("x"))

	var busy []bool
	var nested error
	gw.onCall = func() {
		busy = append(busy, c.Busy())
		if nested == nil {
			nested = c.Cancel()
		}
	}
	require.NoError(t, c.Save(context.Background()))
	assert.Equal(t, []bool{true, true}, busy)
	assert.ErrorIs(t, nested, ErrBusy)
	assert.False(t, c.Busy())
}

// ---- delete ----

func TestDelete_SuccessReloads(t *testing.T) {
	gw := newFakeGateway(entry("a", 1000), entry("b", 2000))
	c := signedIn(t, gw, nil)
	require.NoError(t, c.Select("a"))

	require.NoError(t, c.Delete(context.Background()))
	assert.Equal(t, []string{"delete", "fetch"}, gw.calls)
	assert.Equal(t, "u1", gw.lastDeleteOwner)
	assert.Equal(t, Dashboard, c.State())
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "b", c.Entries()[0].ID)
}

func TestDelete_FailureStaysInEditor(t *testing.T) {
	gw := newFakeGateway(entry("a", 1000))
	gw.deleteErr = errors.New("entry not found, already deleted, or not owned by you")
	c := signedIn(t, gw, nil)
	require.NoError(t, c.Select("a"))

	require.Error(t, c.Delete(context.Background()))
	assert.Equal(t, Editing, c.State())
	assert.Equal(t, "entry not found, already deleted, or not owned by you", c.Notice())
	assert.Equal(t, []string{"delete"}, gw.calls)
	assert.Len(t, c.Entries(), 1)
}

func TestDelete_UnsavedDraft(t *testing.T) {
	gw := newFakeGateway()
	c := signedIn(t, gw, nil)
	require.NoError(t, c.NewEntry())

	require.ErrorIs(t, c.Delete(context.Background()), ErrNotSaved)
	assert.Equal(t, Editing, c.State())
	assert.Empty(t, gw.calls)
}

// ---- annotate ----

func TestAnnotate_EmptyContentNeverCallsGenerator(t *testing.T) {
	prior := &models.Insight{Summary: "s", Mood: "Calm", Advice: "a"}
	e := entry("a", 1000)
	e.Content = ""
	e.AIInsight = prior
	an := &fakeAnnotator{ins: &models.Insight{Summary: "x", Mood: "y", Advice: "z"}}
	c := signedIn(t, newFakeGateway(e), an)
	require.NoError(t, c.Select("a"))

	require.ErrorIs(t, c.Annotate(context.Background()), ErrEmptyContent)
	assert.Zero(t, an.calls)
	d, _ := c.Draft()
	assert.Equal(t, prior, d.AIInsight)
}

func TestAnnotate_ReplacesWholesale(t *testing.T) {
	e := entry("a", 1000)
	e.AIInsight = &models.Insight{Summary: "old", Mood: "Sad", Advice: "old"}
	an := &fakeAnnotator{ins: &models.Insight{Summary: "new", Mood: "Joyful", Advice: "new"}}
	gw := newFakeGateway(e)
	c := signedIn(t, gw, an)
	require.NoError(t, c.Select("a"))

	require.NoError(t, c.Annotate(context.Background()))
	d, _ := c.Draft()
	assert.Equal(t, &models.Insight{Summary: "new", Mood: "Joyful", Advice: "new"}, d.AIInsight)
	assert.Equal(t, Editing, c.State())
	assert.Empty(t, gw.calls, "annotation never touches the store")
}

func TestAnnotate_FailureLeavesPriorInsight(t *testing.T) {
	prior := &models.Insight{Summary: "s", Mood: "Calm", Advice: "a"}
	e := entry("a", 1000)
	e.AIInsight = prior
	an := &fakeAnnotator{err: errors.New("unexpected response from AI service")}
	c := signedIn(t, newFakeGateway(e), an)
	require.NoError(t, c.Select("a"))

	require.Error(t, c.Annotate(context.Background()))
	assert.Equal(t, 1, an.calls)
	assert.Equal(t, Editing, c.State())
	assert.Equal(t, "unexpected response from AI service", c.Notice())
	d, _ := c.Draft()
	assert.Equal(t, prior, d.AIInsight)

	// the failure does not block saving
	require.NoError(t, c.Save(context.Background()))
	assert.Empty(t, c.Notice())
}

func TestAnnotate_Disabled(t *testing.T) {
	c := signedIn(t, newFakeGateway(entry("a", 1000)), nil)
	require.NoError(t, c.Select("a"))
	require.ErrorIs(t, c.Annotate(context.Background()), ErrAnnotatorDisabled)
}

// ---- export ----

func TestExport(t *testing.T) {
	gw := newFakeGateway()
	gw.exportURL = "https://example/archive"
	c := signedIn(t, gw, nil)

	url, err := c.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://example/archive", url)

	gw.exportErr = errors.New("export failed")
	_, err = c.Export(context.Background())
	require.Error(t, err)
	assert.Equal(t, Dashboard, c.State())
	assert.Equal(t, "export failed", c.Notice())
}

func TestSearch_FiltersWithoutReordering(t *testing.T) {
	gw := newFakeGateway(
		models.JournalEntry{ID: "old", UserID: "u1", Title: "Morning Run", Content: "legs tired", CreatedAt: 1000, UpdatedAt: 1000},
		models.JournalEntry{ID: "mid", UserID: "u1", Title: "Work", Content: "a long RUN of meetings", CreatedAt: 2000, UpdatedAt: 2000},
		models.JournalEntry{ID: "new", UserID: "u1", Title: "Evening", Content: "quiet", CreatedAt: 3000, UpdatedAt: 3000},
	)
	c := signedIn(t, gw, nil)

	ids := func(es []models.JournalEntry) []string {
		out := []string{}
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []string{"mid", "old"}, ids(c.Search("run")))
	assert.Equal(t, []string{"new"}, ids(c.Search("  QUIET ")))
	assert.Equal(t, []string{"new", "mid", "old"}, ids(c.Search("")))
	assert.Empty(t, c.Search("holiday"))
	assert.Empty(t, gw.calls, "search must not hit the store")
	assert.Equal(t, Dashboard, c.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "dashboard", Dashboard.String())
	assert.Equal(t, "State(9)", State(9).String())
}
