package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/siteadmin/internal/client/client"
	"github.com/dmitrijs2005/siteadmin/internal/client/config"
	"github.com/dmitrijs2005/siteadmin/internal/common"
	"github.com/dmitrijs2005/siteadmin/internal/dbx"
	"github.com/dmitrijs2005/siteadmin/internal/logging"
	"github.com/dmitrijs2005/siteadmin/internal/server/models"
	"github.com/dmitrijs2005/siteadmin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/siteadmin/internal/server/services"

	serverconfig "github.com/dmitrijs2005/siteadmin/internal/server/config"
)

// AdminStore is the direct database access used by the operator commands
// that run without the API.
type AdminStore interface {
	Migrate(ctx context.Context) error
	CreateAdmin(ctx context.Context, email, name string, password []byte) (*models.User, error)
	Close() error
}

type postgresAdminStore struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	users *services.UserService
}

// OpenAdminStore connects to the database at dsn.
func OpenAdminStore(ctx context.Context, dsn string) (AdminStore, error) {
	db, err := dbx.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New("text")
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	return &postgresAdminStore{
		db:    db,
		rm:    rm,
		users: services.NewUserService(db, rm, &serverconfig.Config{}, logger),
	}, nil
}

func (s *postgresAdminStore) Migrate(ctx context.Context) error {
	return s.rm.RunMigrations(ctx, s.db)
}

func (s *postgresAdminStore) CreateAdmin(ctx context.Context, email, name string, password []byte) (*models.User, error) {
	return s.users.CreateAdmin(ctx, email, name, password)
}

func (s *postgresAdminStore) Close() error {
	return s.db.Close()
}

// App holds the state shared by all commands of one invocation.
type App struct {
	config *config.Config
	reader *bufio.Reader
	out    io.Writer
	api    *client.Client

	openStore func(ctx context.Context, dsn string) (AdminStore, error)

	configPath string
	serverURL  string
	email      string
	dsn        string
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		reader:    bufio.NewReader(in),
		out:       out,
		openStore: OpenAdminStore,
	}
}

// setup loads configuration and applies the flags the user set explicitly.
func (a *App) setup(changed func(name string) bool) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if changed("server") {
		cfg.ServerURL = a.serverURL
	}
	if changed("email") {
		cfg.Email = a.email
	}
	if changed("dsn") {
		cfg.DatabaseDSN = a.dsn
	}
	a.config = cfg

	a.api = client.New(cfg.ServerURL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		client.WithCacheTTL(cfg.ListCacheTTL),
	)
	return nil
}

// signIn prompts for whatever credentials are missing and logs in.
func (a *App) signIn(ctx context.Context) error {
	email := a.config.Email
	if email == "" {
		var err error
		email, err = GetSimpleText(a.reader, "Email", a.out)
		if err != nil {
			return err
		}
	}

	password, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if session != nil {
		fmt.Fprintln(a.out, styleMuted.Render("signed in as "+session.Name+" <"+session.Email+">"))
	}
	return nil
}

func (a *App) withStore(ctx context.Context, fn func(AdminStore) error) error {
	store, err := a.openStore(ctx, a.config.DatabaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
