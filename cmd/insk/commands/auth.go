package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/inskhq/insk-go/pkg/insk"
)

// LoginAction verifies credentials against the backend. The session it
// creates lives only for this invocation; see AppContext.
func LoginAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Println("login OK")
	return nil
}

// LogoutAction clears any session state for the current process and removes
// the persisted token file.
func LogoutAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Store.Clear(); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

// SignUpAction registers a new user.
func SignUpAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	resp, err := app.API.Auth.SignUp(ctx, signUpRequest(cmd))
	if err != nil {
		return describeErr(err)
	}
	fmt.Printf("registered %s (user %d, department %s)\n", resp.Email, resp.UserID, resp.Department)
	return nil
}

func signUpRequest(cmd *cli.Command) insk.SignUpRequest {
	return insk.SignUpRequest{
		Email:      cmd.String("email"),
		Password:   cmd.String("password"),
		Department: cmd.String("department"),
	}
}
