package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/antiquary/internal/client/config"
	"github.com/dmitrijs2005/antiquary/internal/client/images"
	"github.com/dmitrijs2005/antiquary/internal/client/localdb"
	"github.com/dmitrijs2005/antiquary/internal/client/repositories/scans"
	"github.com/dmitrijs2005/antiquary/internal/client/services"
	"github.com/dmitrijs2005/antiquary/internal/common"
	"github.com/dmitrijs2005/antiquary/internal/logging"
	"github.com/dmitrijs2005/antiquary/internal/objectstore"
	"github.com/dmitrijs2005/antiquary/internal/remote/repositories/repomanager"
	rservices "github.com/dmitrijs2005/antiquary/internal/remote/services"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	// ModeLocal means no backend is configured at all.
	ModeLocal Mode = "local"
)

type App struct {
	config     *config.Config
	log        logging.Logger
	repos      *localdb.Repositories
	remoteDB   *sql.DB
	local      services.LocalStore
	remote     services.RemoteRepository
	session    *services.SessionService
	reconciler *services.Reconciler
	scans      *services.ScanService
	Mode       Mode
	reader     *bufio.Reader
	out        io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stderr, slog.LevelWarn)

	repos, err := localdb.InitDatabase(ctx, c.LocalDatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing local database: %w", err)
	}

	remote, remoteDB, err := newRemote(c, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	store := objectstore.NewS3Store(objectstore.Config{
		Region:        c.S3Region,
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		BaseEndpoint:  c.S3BaseEndpoint,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	materializer := images.NewMaterializer(store,
		images.WithMaxDimension(c.ImageMaxDimension),
		images.WithLogger(logger),
	)

	a := &App{
		config:   c,
		log:      logger,
		repos:    repos,
		remoteDB: remoteDB,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	a.wire(scans.NewStore(repos.DB), remote, materializer)
	return a, nil
}

// wire builds the services on top of the given collaborators.
func (a *App) wire(local services.LocalStore, remote services.RemoteRepository, imgs services.ImageMaterializer) {
	a.local = local
	a.remote = remote
	a.session = services.NewSessionService(a.repos.Metadata, []byte(a.config.JWTSecret), a.log)
	a.reconciler = services.NewReconciler(local, remote, imgs, a.repos.Metadata, a.log)
	a.scans = services.NewScanService(a.session, local, remote, imgs, a.log)

	a.session.OnSignIn(func(ctx context.Context, ownerID string) {
		_, _ = a.migrate(ctx, ownerID)
	})
}

func newRemote(c *config.Config, logger logging.Logger) (services.RemoteRepository, *sql.DB, error) {
	if c.RemoteDatabaseDSN == "" {
		return rservices.Disabled{}, nil, nil
	}
	db, err := repomanager.Open(c.RemoteDatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening remote database: %w", err)
	}
	svc := rservices.NewCollectionService(db, repomanager.NewPostgresRepositoryManager(),
		rservices.WithCacheTTL(c.CollectionsCacheTTL),
		rservices.WithPingTimeout(c.BackendCheckTimeout),
		rservices.WithLogger(logger),
	)
	return svc, db, nil
}

// Close releases both databases.
func (a *App) Close() error {
	var errs []error
	if a.remoteDB != nil {
		errs = append(errs, a.remoteDB.Close())
	}
	if a.repos != nil {
		errs = append(errs, a.repos.Close())
	}
	return errors.Join(errs...)
}

// Run restores a saved session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to antiquary (type 'help' for commands)")
	a.restoreSession(ctx)
	a.refreshMode(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) restoreSession(ctx context.Context) {
	owner, ok, err := a.session.Restore(ctx)
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		fmt.Fprintln(a.out, "Your session has expired, please login again")
	case err != nil:
		fmt.Fprintf(a.out, "Stored session discarded: %v\n", err)
	case ok:
		fmt.Fprintf(a.out, "Signed in as %s\n", owner)
	}
}

func (a *App) isLoggedIn() bool {
	_, ok := a.session.CurrentOwner()
	return ok
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

// refreshMode probes the backend and updates Mode.
func (a *App) refreshMode(ctx context.Context) {
	if a.config.RemoteDatabaseDSN == "" {
		a.setMode(ModeLocal)
		return
	}
	if err := a.remote.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) getStatus() string {
	s := ""
	if owner, ok := a.session.CurrentOwner(); ok {
		s = owner + " "
	}
	if a.Mode != "" {
		s = s + string(a.Mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) requireOwner() (string, error) {
	owner, ok := a.session.CurrentOwner()
	if !ok {
		return "", fmt.Errorf("please login first: %w", common.ErrNotAuthenticated)
	}
	return owner, nil
}
