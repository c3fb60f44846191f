package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/antiquary/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// Login reads an access token, signs in and migrates any scans kept on the
// device to the account.
func (a *App) Login(ctx context.Context) error {
	token, err := a.readToken()
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("empty token")
	}

	before, _ := a.session.CurrentOwner()
	owner, err := a.session.SignIn(ctx, token)
	if err != nil {
		return err
	}
	if owner == before {
		// listeners only fire on a change of user
		fmt.Fprintf(a.out, "Already signed in as %s\n", owner)
		return nil
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", owner)
	return nil
}

// readToken reads the token without echo from a terminal, or as a plain
// line when stdin is redirected.
func (a *App) readToken() (string, error) {
	if isTerminal(int(os.Stdin.Fd())) {
		b, err := getSecret(a.out, "Paste access token: ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return getSimpleText(a.reader, "Paste access token", a.out)
}

// Logout forgets the session. Scans stay where they are.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// Sync moves scans kept on the device to the signed-in account.
func (a *App) Sync(ctx context.Context) error {
	owner, err := a.requireOwner()
	if err != nil {
		return err
	}
	_, err = a.migrate(ctx, owner)
	return err
}

// migrate runs the reconciliation engine and reports the outcome.
func (a *App) migrate(ctx context.Context, owner string) (int, error) {
	n, err := a.reconciler.Migrate(ctx, owner)
	a.refreshMode(ctx)
	switch {
	case errors.Is(err, common.ErrBackendUnavailable):
		fmt.Fprintln(a.out, "Backend unavailable, scans stay on this device for now")
	case err != nil:
		fmt.Fprintf(a.out, "Moving scans to your account failed: %v\n", err)
	case n > 0:
		fmt.Fprintf(a.out, "Moved %d scan(s) to your account\n", n)
	}
	return n, err
}
