package cli

import (
	"context"
)

// Root greets the user, checks the server, asks for the access code and
// runs the REPL until the user exits. The watcher starts right away and
// stays quiet while logged out.
func (a *App) Root(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.println("Welcome to sharebox CLI (type 'help' for commands)")

	if err := a.api.Ping(ctx); err != nil {
		a.println("Server unavailable:", err)
		a.mode = ModeOffline
	} else {
		a.mode = ModeOnline
		report(a.Login(ctx))
	}

	if a.config.PollInterval > 0 {
		go a.StartWatcher(ctx, a.config.PollInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
