package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/sharebox/internal/client/client"
	"github.com/dmitrijs2005/sharebox/internal/common"
)

// confirm, getMultiline and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	confirm      = Confirm
	getMultiline = GetMultiline
	getPassword  = GetPassword
)

// Login prompts for the access code and exchanges it for a session.
//
// A rejected code leaves the App logged out and is reported to the user;
// only I/O failures and an unreachable server are returned as errors. The
// code is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	code, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(code)

	trimmed := strings.TrimSpace(string(code))
	if trimmed == "" {
		a.println("Access code required")
		return nil
	}

	err = a.api.Login(ctx, trimmed)
	switch {
	case err == nil:
		a.loggedIn.Store(true)
		a.setMode(ModeOnline)
		a.println("Login successful")
		return nil
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		return err
	case errors.Is(err, client.ErrRateLimited):
		a.println("Too many attempts, try again later")
	default:
		a.println("Login unsuccessful:", err)
	}
	a.loggedIn.Store(false)
	return nil
}

// Logout ends the session on the server and forgets it locally. The local
// state is cleared even when the server cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	a.loggedIn.Store(false)
	if err := a.api.Logout(ctx); err != nil && !errors.Is(err, client.ErrUnauthorized) {
		return err
	}
	a.println("Logged out")
	return nil
}
