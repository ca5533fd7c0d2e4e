// Package server wires the catalog server together: database and
// migrations, the identity bus with the profile provisioner subscribed to
// it, the services and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/srefhub/internal/logging"
	"github.com/dmitrijs2005/srefhub/internal/server/config"
	"github.com/dmitrijs2005/srefhub/internal/server/identity"
	"github.com/dmitrijs2005/srefhub/internal/server/provisioner"
	"github.com/dmitrijs2005/srefhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/srefhub/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"

	gs "github.com/dmitrijs2005/srefhub/internal/server/grpc"
)

const recentProvisioningFailures = 50

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	unsubscribe func()
	grpcServer  *gs.GRPCServer
}

// NewApp connects to Postgres, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {

	logger := logging.NewJSONLogger(logOut, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	bus := identity.NewBus()
	alerts := services.NewProvisioningAlerts(recentProvisioningFailures, logger)
	p := provisioner.New(services.NewProfileStore(db, rm), alerts, logger)
	unsubscribe := bus.Subscribe(p.HandleAuthEvent)

	svc := gs.Services{
		Identity: services.NewIdentityService(db, rm, bus, c, logger),
		Votes:    services.NewVoteService(db, rm),
		Catalog:  services.NewCatalogService(db, rm),
		Folders:  services.NewFolderService(db, rm),
		Images:   services.NewImageService(db, rm, c),
		Audit:    services.NewAuditService(db, rm, p, alerts),
		Waitlist: services.NewWaitlistService(db, rm),
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		unsubscribe: unsubscribe,
		grpcServer:  gs.NewGRPCServer(c.EndpointAddrGRPC, logger, svc, c.SecretKey),
	}, nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or the process gets SIGINT, SIGTERM or
// SIGQUIT, then releases the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.unsubscribe()
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "closing db", "error", err)
	}
	app.logger.Info(context.Background(), "Stopped")
}
