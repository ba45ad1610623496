package cli

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/dmitrijs2005/gophjournal/internal/filex"
	"github.com/dmitrijs2005/gophjournal/internal/netx"
)

var errAborted = errors.New("aborted")

// report prints a failed controller action.
func (a *App) report(err error) error {
	a.printf("Error: %v\n", err)
	return err
}

func (a *App) inputFailed(err error) error {
	a.printf("Error: reading input: %v\n", err)
	return err
}

func (a *App) readCredentials() (string, []byte, error) {
	email, err := GetSimpleText(a.reader, "E-mail", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Display name (optional)", a.out)
	if err != nil {
		return a.inputFailed(err)
	}
	email, password, err := a.readCredentials()
	if err != nil {
		return a.inputFailed(err)
	}
	defer common.WipeByteArray(password)

	res, err := a.ctrl.SignUp(ctx, email, string(password), name)
	if err != nil {
		return a.report(err)
	}

	switch res.Status {
	case models.SignupConfirmationPending:
		a.printf("Account created for %s. %s.\n", res.Email, capitalize(a.ctrl.Notice()))
		a.printf("Type \"confirm\" to enter the code from the e-mail.\n")
	case models.SignupAuthenticated:
		a.printf("Welcome, %s!\n", a.ctrl.User().Name)
		renderList(a.out, a.ctrl.Entries())
	}
	return nil
}

func (a *App) Confirm(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "E-mail", a.out)
	if err != nil {
		return a.inputFailed(err)
	}
	code, err := GetSimpleText(a.reader, "Confirmation code", a.out)
	if err != nil {
		return a.inputFailed(err)
	}
	if err := a.ctrl.ConfirmEmail(ctx, email, code); err != nil {
		return a.report(err)
	}
	a.printf("E-mail confirmed. You can now log in.\n")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return a.inputFailed(err)
	}
	defer common.WipeByteArray(password)

	if err := a.ctrl.SignIn(ctx, email, string(password)); err != nil {
		return a.report(err)
	}
	a.printf("Welcome, %s!\n", a.ctrl.User().Name)
	renderList(a.out, a.ctrl.Entries())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.ctrl.Logout(ctx); err != nil {
		return a.report(err)
	}
	a.printf("Logged out.\n")
	return nil
}

// List prints the entries, narrowed to a search term when one is given.
func (a *App) List(ctx context.Context, arg string) error {
	if strings.TrimSpace(arg) != "" {
		return a.Find(ctx, arg)
	}
	renderList(a.out, a.ctrl.Entries())
	return nil
}

// Find lists entries whose title or content contains the term, ignoring
// case. Rows keep their list numbers so "open <n>" still works.
func (a *App) Find(_ context.Context, arg string) error {
	term := strings.TrimSpace(arg)
	if term == "" {
		var err error
		if term, err = GetSimpleText(a.reader, "Search for", a.out); err != nil {
			return a.inputFailed(err)
		}
	}

	matches := a.ctrl.Search(term)
	if len(matches) == 0 {
		a.printf("No entries match %q.\n", term)
		return nil
	}

	pos := make(map[string]int)
	for i, e := range a.ctrl.Entries() {
		pos[e.ID] = i + 1
	}
	renderNumbered(a.out, matches, func(i int) int { return pos[matches[i].ID] })
	return nil
}

func (a *App) New(ctx context.Context) error {
	if err := a.ctrl.NewEntry(); err != nil {
		return a.report(err)
	}
	return a.Show(ctx)
}

// Open selects an entry by its list number or by id.
func (a *App) Open(ctx context.Context, arg string) error {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		var err error
		if arg, err = GetSimpleText(a.reader, "Entry number or id", a.out); err != nil {
			return a.inputFailed(err)
		}
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		entries := a.ctrl.Entries()
		if n >= 1 && n <= len(entries) {
			id = entries[n-1].ID
		}
	}

	if err := a.ctrl.Select(id); err != nil {
		return a.report(err)
	}
	return a.Show(ctx)
}

func (a *App) Show(context.Context) error {
	d, ok := a.ctrl.Draft()
	if !ok {
		a.printf("No entry is open. Use \"open\" or \"new\".\n")
		return nil
	}
	renderEntry(a.out, d, a.ctrl.IsNewDraft())
	return nil
}

func (a *App) Title(_ context.Context, arg string) error {
	title := strings.TrimSpace(arg)
	if title == "" {
		var err error
		if title, err = GetSimpleText(a.reader, "Title", a.out); err != nil {
			return a.inputFailed(err)
		}
	}
	if err := a.ctrl.SetTitle(title); err != nil {
		return a.report(err)
	}
	return nil
}

// Write replaces the draft body with text typed by the user.
func (a *App) Write(context.Context) error {
	text, err := GetMultiline(a.reader, "Write your entry", a.out)
	if err != nil {
		return a.inputFailed(err)
	}
	if err := a.ctrl.SetContent(text); err != nil {
		return a.report(err)
	}
	return nil
}

func (a *App) Tags(_ context.Context, arg string) error {
	line := arg
	if strings.TrimSpace(line) == "" {
		var err error
		if line, err = GetSimpleText(a.reader, "Tags (comma separated, empty to clear)", a.out); err != nil {
			return a.inputFailed(err)
		}
	}
	if err := a.ctrl.SetTags(ParseTags(line)); err != nil {
		return a.report(err)
	}
	d, _ := a.ctrl.Draft()
	a.printf("Tags: %s\n", formatTags(d.Tags))
	return nil
}

func (a *App) Analyze(ctx context.Context) error {
	a.printf("Analyzing...\n")
	if err := a.ctrl.Annotate(ctx); err != nil {
		return a.report(err)
	}
	return a.Show(ctx)
}

func (a *App) Save(ctx context.Context) error {
	if err := a.ctrl.Save(ctx); err != nil {
		return a.report(err)
	}
	a.printf("Saved.\n")
	renderList(a.out, a.ctrl.Entries())
	return nil
}

func (a *App) Cancel(context.Context) error {
	if err := a.ctrl.Cancel(); err != nil {
		return a.report(err)
	}
	renderList(a.out, a.ctrl.Entries())
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	d, ok := a.ctrl.Draft()
	if ok && !a.ctrl.IsNewDraft() && !Confirm(a.reader, "Delete \""+d.Title+"\"?", a.out) {
		a.printf("Kept.\n")
		return errAborted
	}
	if err := a.ctrl.Delete(ctx); err != nil {
		return a.report(err)
	}
	a.printf("Deleted.\n")
	renderList(a.out, a.ctrl.Entries())
	return nil
}

func (a *App) Export(ctx context.Context) error {
	url, err := a.ctrl.Export(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printf("Your export is ready: %s\n", url)

	path, err := GetSimpleText(a.reader, "Save archive to (empty to skip)", a.out)
	if err != nil || path == "" {
		return nil
	}

	var n int64
	err = filex.WriteFileAtomic(path, func(f *os.File) error {
		var err error
		n, err = netx.DownloadPresignedURL(ctx, url, f, a.downloadTimeout)
		return err
	})
	if err != nil {
		a.logger.Warn(ctx, "export download failed", "error", err)
		a.printf("Error: could not save the archive: %v\n", err)
		return err
	}
	a.printf("Saved %d bytes to %s\n", n, path)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
