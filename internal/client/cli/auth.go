package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/srefhub/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getYesNo      = GetYesNo
)

// Register creates an account. The username is optional; the server falls
// back to the email's local part.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username (optional)", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.SignUp(ctx, email, password, username); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Signed up, now log in.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.SignIn(ctx, email, password)
	if err != nil {
		a.logger.Info(ctx, "login failed", "email", email, "error", err)
		return err
	}

	a.session = sess
	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	return a.auth.SignOut(ctx, a.session)
}

func (a *App) Whoami(ctx context.Context) error {
	p, err := a.auth.Whoami(ctx, a.session)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>  tier: %s  waitlist: %s  since %s\n",
		p.Username, p.Email, p.Tier, p.WaitlistStatus, p.CreatedAt.Format(dateLayout))
	return nil
}

// Waitlist requests collector access. Signed-in users can press enter to use
// their account email.
func (a *App) Waitlist(ctx context.Context) error {
	prompt := "Enter email"
	if a.isLoggedIn() {
		prompt = fmt.Sprintf("Enter email (blank for %s)", a.session.Email)
	}
	email, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	e, err := a.auth.JoinWaitlist(ctx, a.session, email)
	if errors.Is(err, common.ErrAlreadyOnWaitlist) {
		fmt.Fprintln(a.out, "You are already on the waitlist.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added %s to the waitlist (%s).\n", e.Email, e.Status)
	return nil
}
