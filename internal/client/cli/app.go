package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/srefhub/internal/client/client"
	"github.com/dmitrijs2005/srefhub/internal/client/config"
	"github.com/dmitrijs2005/srefhub/internal/client/services"
	"github.com/dmitrijs2005/srefhub/internal/client/session"
	"github.com/dmitrijs2005/srefhub/internal/ledger"
	"github.com/dmitrijs2005/srefhub/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 15 * time.Second

type App struct {
	config  *config.Config
	auth    services.AuthService
	catalog services.CatalogService
	session *session.Session
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	modeMu sync.Mutex
	mode   Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stderr, c.LogLevel)

	store, err := session.Open(ctx, c.DataDir)
	if err != nil {
		logger.Error(ctx, "error opening session store", "error", err)
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	l := ledger.New(apiClient, logger)

	app := &App{
		config:  c,
		auth:    services.NewAuthService(apiClient, store, l, logger),
		catalog: services.NewCatalogService(apiClient, l),
		logger:  logger.With("module", "cli"),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	sess, err := app.auth.Restore(ctx)
	if err != nil {
		_ = app.auth.Close(ctx)
		return nil, err
	}
	app.session = sess
	return app, nil
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.SignedIn()
}

func (a *App) status() string {
	s := ""
	if a.isLoggedIn() {
		s = a.session.Email + " "
	}
	s += string(a.Mode())
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

// Run blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		if err := a.auth.Close(context.Background()); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	printlnFn("Welcome to SrefHub (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	err := a.auth.Ping(pingCtx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}
