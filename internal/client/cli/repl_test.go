package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophjournal/internal/client/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	state controller.State

	calls []string
	args  []string
}

func (f *fakeExec) view() controller.State { return f.state }

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) recordArg(name, arg string) error {
	f.args = append(f.args, arg)
	return f.record(name)
}

func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Confirm(context.Context) error  { return f.record("confirm") }
func (f *fakeExec) Login(context.Context) error {
	f.state = controller.Dashboard
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.state = controller.Unauthenticated
	return f.record("logout")
}
func (f *fakeExec) List(_ context.Context, arg string) error { return f.recordArg("list", arg) }
func (f *fakeExec) Find(_ context.Context, arg string) error { return f.recordArg("find", arg) }
func (f *fakeExec) New(context.Context) error {
	f.state = controller.Editing
	return f.record("new")
}
func (f *fakeExec) Open(_ context.Context, arg string) error  { return f.recordArg("open", arg) }
func (f *fakeExec) Show(context.Context) error                { return f.record("show") }
func (f *fakeExec) Title(_ context.Context, arg string) error { return f.recordArg("title", arg) }
func (f *fakeExec) Write(context.Context) error               { return f.record("write") }
func (f *fakeExec) Tags(_ context.Context, arg string) error  { return f.recordArg("tags", arg) }
func (f *fakeExec) Analyze(context.Context) error             { return f.record("analyze") }
func (f *fakeExec) Save(context.Context) error {
	f.state = controller.Dashboard
	return f.record("save")
}
func (f *fakeExec) Cancel(context.Context) error { return f.record("cancel") }
func (f *fakeExec) Delete(context.Context) error { return f.record("delete") }
func (f *fakeExec) Export(context.Context) error { return f.record("export") }

func capturePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, len(a))
		for i, v := range a {
			parts[i], _ = v.(string)
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommandsAndArgs(t *testing.T) {
	capturePrint(t)

	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"list",
		"find Morning walk",
		"open 2",
		"TITLE  A quiet morning",
		"write",
		"tags work, home",
		"analyze",
		"save",
		"new",
		"cancel",
		"export",
		"delete",
		"confirm",
		"register",
		"logout",
		"exit",
		"list",
	}, "\n")))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, input)

	assert.Equal(t, []string{
		"login", "list", "find", "open", "title", "write", "tags", "analyze", "save",
		"new", "cancel", "export", "delete", "confirm", "register", "logout",
	}, exec.calls)
	assert.Equal(t, []string{"", "Morning walk", "2", " A quiet morning", "work, home"}, exec.args)
}

func TestRunREPL_UnknownAndBlank(t *testing.T) {
	lines := capturePrint(t)

	input := bufio.NewReader(strings.NewReader("\n   \nfoobar\nquit\n"))
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, input)

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Contains(t, *lines, "Bye!")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrint(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("login")))

	assert.Equal(t, []string{"login"}, exec.calls)
}

func TestRunREPL_HelpFollowsView(t *testing.T) {
	lines := capturePrint(t)

	input := bufio.NewReader(strings.NewReader("help\nlogin\nhelp\nnew\nhelp\n"))
	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, input)

	var help []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands") {
			help = append(help, l)
		}
	}
	require.Len(t, help, 3)
	assert.Contains(t, help[0], "register")
	assert.Contains(t, help[1], "open")
	assert.Contains(t, help[2], "analyze")
}

func TestRunREPL_PromptShowsStatus(t *testing.T) {
	lines := capturePrint(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "ann@example.com [dashboard]" },
		bufio.NewReader(strings.NewReader("exit\n")))

	require.NotEmpty(t, *lines)
	assert.Equal(t, "journal> ann@example.com [dashboard] > ", (*lines)[0])
}
