// Package cli is the studyctl terminal front end. The App owns the session
// store and renders each screen of the study app as a REPL command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/palavraviva/study-platform/internal/client/api"
	"github.com/palavraviva/study-platform/internal/client/auth"
	"github.com/palavraviva/study-platform/internal/client/config"
	"github.com/palavraviva/study-platform/internal/core/session"
)

var errAdminOnly = errors.New("acesso restrito a administradores")

type App struct {
	config *config.Config
	api    *api.Client
	auth   *auth.Client
	store  *session.Store
	log    zerolog.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	return newApp(cfg, log, os.Stdin, os.Stdout)
}

func newApp(cfg *config.Config, log zerolog.Logger, in io.Reader, out io.Writer) *App {
	apiClient := api.New(cfg.APIURL, cfg.RequestTimeout)
	authClient := auth.New(apiClient, cfg.RefreshMargin, log)
	return &App{
		config: cfg,
		api:    apiClient,
		auth:   authClient,
		store:  session.New(authClient, apiClient, apiClient, log),
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run starts the store and the REPL and returns when the user exits or ctx
// is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.store.Start(ctx); err != nil {
		return fmt.Errorf("start session store: %w", err)
	}
	defer a.store.Close()

	go a.auth.AutoRefresh(ctx, refreshInterval(a.config.RefreshMargin))
	go a.watchForeground(ctx)

	printlnFn("Bem-vindo ao estudos (digite 'help' para ver os comandos)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// watchForeground re-validates the session whenever the process is resumed
// after being stopped, the terminal analogue of an app regaining focus.
func (a *App) watchForeground(ctx context.Context) {
	resumed, stop := notifyForeground()
	defer stop()
	for {
		select {
		case <-resumed:
			if err := a.store.Revalidate(ctx); err != nil {
				a.log.Debug().Err(err).Msg("revalidate on resume")
			}
		case <-ctx.Done():
			return
		}
	}
}

func refreshInterval(margin time.Duration) time.Duration {
	if margin <= 0 {
		return 30 * time.Second
	}
	return margin / 2
}

func (a *App) isLoggedIn() bool {
	return a.store.Snapshot().Authenticated()
}

func (a *App) isAdmin() bool {
	return a.store.Snapshot().CanAccessAdmin()
}

func (a *App) status() string {
	snap := a.store.Snapshot()
	switch {
	case snap.Loading:
		return "(carregando)"
	case !snap.Authenticated():
		return "(anônimo)"
	}
	s := snap.Profile.Name(snap.Session.User.Email)
	if snap.CanAccessAdmin() {
		s += " admin"
	}
	if snap.HasNewStudyNotification {
		s += " *novo estudo*"
	}
	return "(" + s + ")"
}

// token returns a fresh access token, or auth.ErrSignedOut.
func (a *App) token(ctx context.Context) (string, error) {
	sess, err := a.auth.GetCurrentSession(ctx)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", auth.ErrSignedOut
	}
	return sess.AccessToken, nil
}

func (a *App) ask(prompt string) (string, error) {
	return GetSimpleText(a.reader, prompt, a.out)
}
