package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/client/client"
	"github.com/dmitrijs2005/sharebox/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// newAPI is a seam for tests.
var newAPI = func(c *config.Config) (client.API, error) {
	return client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
}

type App struct {
	config   *config.Config
	api      client.API
	reader   *bufio.Reader
	loggedIn atomic.Bool

	mu   sync.Mutex // guards out and mode; the watcher prints concurrently
	out  io.Writer
	mode Mode
}

func NewApp(c *config.Config) (*App, error) {
	api, err := newAPI(c)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: api, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn.Load()
}

func (a *App) printf(format string, args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if !a.isLoggedIn() {
		s = "logged out"
	}
	if a.mode == ModeOffline {
		if s != "" {
			s += " "
		}
		s += string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s) ", s)
	}
	return s
}

// checkSession turns an expired session into a logged out state so the
// prompt tells the user to log in again.
func (a *App) checkSession(err error) error {
	if errors.Is(err, client.ErrUnauthorized) && a.loggedIn.CompareAndSwap(true, false) {
		a.println("Session expired, please login again")
	}
	return err
}

// StartWatcher polls the listing every interval and prints the keys that
// appeared ("+ key") or vanished ("- key") since the previous poll. It also
// flips the connectivity mode. It returns when ctx is done.
func (a *App) StartWatcher(ctx context.Context, interval time.Duration) {
	w := newWatcher(a.api, a.config.RequestTimeout)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				continue
			}
			added, removed, err := w.poll(ctx)
			switch {
			case errors.Is(err, client.ErrUnavailable):
				a.setMode(ModeOffline)
			case err != nil:
				_ = a.checkSession(err)
			default:
				a.setMode(ModeOnline)
				for _, k := range added {
					a.println("+", k)
				}
				for _, k := range removed {
					a.println("-", k)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
