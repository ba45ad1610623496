package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophjournal/internal/client/controller"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	view() controller.State
	Register(ctx context.Context) error
	Confirm(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context, arg string) error
	Find(ctx context.Context, arg string) error
	New(ctx context.Context) error
	Open(ctx context.Context, arg string) error
	Show(ctx context.Context) error
	Title(ctx context.Context, arg string) error
	Write(ctx context.Context) error
	Tags(ctx context.Context, arg string) error
	Analyze(ctx context.Context) error
	Save(ctx context.Context) error
	Cancel(ctx context.Context) error
	Delete(ctx context.Context) error
	Export(ctx context.Context) error
}

func helpText(v controller.State) string {
	switch v {
	case controller.Dashboard:
		return "Available commands: (l)ist [term], find <term>, new, open <n|id>, export, logout, exit"
	case controller.Editing:
		return "Available commands: show, title [text], write, tags [a, b], analyze, save, delete, cancel, exit"
	default:
		return "Available commands: register, confirm, login, exit"
	}
}

// runREPL starts a simple read-eval-print loop for the journal CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the rest of the line to commands that take an argument. Prompts
// issued by command handlers read from the same reader, so buffered input
// is never lost between them. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// The prompt shows the current status (from statusFn). Which commands
// succeed depends on the view; the controller rejects the others.
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("journal> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		if cmd == "" {
			continue
		}

		switch strings.ToLower(cmd) {
		case "help", "?":
			printlnFn(helpText(a.view()))

		case "register", "signup":
			_ = a.Register(ctx)

		case "confirm":
			_ = a.Confirm(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx, arg)

		case "find", "search":
			_ = a.Find(ctx, arg)

		case "new":
			_ = a.New(ctx)

		case "open":
			_ = a.Open(ctx, arg)

		case "show":
			_ = a.Show(ctx)

		case "title":
			_ = a.Title(ctx, arg)

		case "write":
			_ = a.Write(ctx)

		case "tags":
			_ = a.Tags(ctx, arg)

		case "analyze":
			_ = a.Analyze(ctx)

		case "save":
			_ = a.Save(ctx)

		case "cancel", "back":
			_ = a.Cancel(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "export":
			_ = a.Export(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
