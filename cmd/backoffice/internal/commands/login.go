package commands

import (
	"context"
	"fmt"
)

type LoginCmd struct {
	Email    string `help:"Portal email" required:""`
	Password string `help:"Portal password" required:"" env:"BACKOFFICE_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	user, err := globals.Auth.Authenticate(ctx, l.Email, l.Password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintf(globals.Out, "Signed in as %s (%s) in %s\n", user.Name, user.Role, globals.Store.ActiveOrg(ctx))
	return nil
}
