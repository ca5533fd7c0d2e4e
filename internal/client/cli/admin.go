package cli

import (
	"context"
	"fmt"
)

// Audit lists identities that signed in but have no profile, and the
// provisioning failures the server has recorded recently. Admins only.
func (a *App) Audit(ctx context.Context) error {
	r, err := a.catalog.Audit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Identities without a profile: %d\n", len(r.Orphans))
	for _, o := range r.Orphans {
		fmt.Fprintf(a.out, "  %s  %s  %s\n", o.ID, o.Email, o.CreatedAt.Format(dateLayout))
	}
	fmt.Fprintf(a.out, "Recent provisioning failures: %d\n", len(r.Failures))
	for _, f := range r.Failures {
		fmt.Fprintf(a.out, "  %s  %s  %s\n", f.At.Format("2006-01-02 15:04:05"), f.IdentityID, f.Error)
	}
	return nil
}

func (a *App) Reprovision(ctx context.Context) error {
	r, err := a.catalog.Reprovision(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profiles created: %d\n", r.Created)
	if r.Error != "" {
		fmt.Fprintf(a.out, "Some identities failed: %s\n", r.Error)
	}
	return nil
}
