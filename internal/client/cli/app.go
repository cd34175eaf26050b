package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/boostmanager/internal/client/client"
	"github.com/dmitrijs2005/boostmanager/internal/client/config"
	"github.com/dmitrijs2005/boostmanager/internal/client/models"
	"github.com/dmitrijs2005/boostmanager/internal/client/services"
	"github.com/dmitrijs2005/boostmanager/internal/filex"
)

// App holds what every bmctl command needs: the API client, the session
// service and the terminal streams.
type App struct {
	config  *config.Config
	db      *sql.DB
	api     *client.HTTPClient
	session services.SessionService

	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dsn, err := filex.ExpandHome(c.SessionDB)
	if err != nil {
		return nil, err
	}
	if filex.IsFilePath(dsn) {
		if err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := client.InitDatabase(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	a := &App{
		config:  c,
		db:      db,
		api:     api,
		session: services.NewSessionService(api, db),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		errOut:  os.Stderr,
	}

	api.OnNotice(func(n client.Notice) {
		fmt.Fprintln(a.errOut, n)
	})
	api.OnTokenRefresh(func(ctx context.Context, pair *models.TokenPair) {
		if err := a.session.SaveTokens(ctx, pair); err != nil {
			fmt.Fprintf(a.errOut, "could not save refreshed session: %v\n", err)
		}
	})

	if _, err := a.session.Restore(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}
	return a, nil
}

// SetIO points the app at the command's streams.
func (a *App) SetIO(in io.Reader, out, errOut io.Writer) {
	a.reader = bufio.NewReader(in)
	a.out = out
	a.errOut = errOut
}

func (a *App) Close() error {
	return a.db.Close()
}
