package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/annotator"
	"github.com/dmitrijs2005/gophjournal/internal/client/client"
	"github.com/dmitrijs2005/gophjournal/internal/client/config"
	"github.com/dmitrijs2005/gophjournal/internal/client/controller"
	"github.com/dmitrijs2005/gophjournal/internal/client/gateway"
	"github.com/dmitrijs2005/gophjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophjournal/internal/client/services"
	"github.com/dmitrijs2005/gophjournal/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	ctrl   *controller.Controller
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	downloadTimeout time.Duration

	// closers run in reverse order when Run returns.
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", c.ServerEndpointAddr, err)
	}

	identity := services.NewIdentityService(apiClient, metadata.NewSessionStore(db), logger)
	apiClient.SetTokenListener(identity.PersistTokens)

	ctrl := controller.New(
		identity,
		gateway.New(apiClient, logger),
		annotator.NewGeminiAnnotator(c.GeminiBaseURL, c.GeminiAPIKey, c.GeminiModel, c.AnnotateTimeout),
		logger,
	)

	a := newApp(ctrl, bufio.NewReader(os.Stdin), os.Stdout, logger)
	a.config = c
	a.downloadTimeout = c.RequestTimeout
	a.closers = []func() error{db.Close, apiClient.Close}
	return a, nil
}

// newApp builds an App around an existing controller; tests use it with
// fakes behind the controller.
func newApp(ctrl *controller.Controller, reader *bufio.Reader, out io.Writer, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Nop()
	}
	return &App{ctrl: ctrl, logger: logger, reader: reader, out: out}
}

// Run restores the stored session and serves the REPL until the user
// leaves or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	if err := a.ctrl.Bootstrap(ctx); err != nil {
		a.printf("Could not restore your session: %v\n", err)
	} else if u := a.ctrl.User(); u != nil {
		a.printf("Welcome back, %s!\n", u.Name)
		renderList(a.out, a.ctrl.Entries())
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}
}

// status is shown in the prompt: who is signed in and which view is open.
func (a *App) status() string {
	u := a.ctrl.User()
	if u == nil {
		return "signed out"
	}
	return fmt.Sprintf("%s [%s]", u.Email, a.ctrl.State())
}

func (a *App) view() controller.State { return a.ctrl.State() }

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
