package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fzdarsky/srpkit/internal/auth"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// LoginCommand implements the 'login' command.
type LoginCommand struct {
	console *console
}

// NewLoginCommand creates a new login command instance.
func NewLoginCommand() *LoginCommand {
	return &LoginCommand{console: stdConsole()}
}

// Execute runs the login command with the provided arguments.
func (c *LoginCommand) Execute(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)

	username := fs.String("username", "", "Username (prompts if not provided)")
	password := fs.String("password", "", "Password (prompts if not provided)")
	showKey := fs.Bool("show-key", false, "Print the negotiated session key to stdout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: srp login [flags]

Run a complete SRP-6a login against a stored verifier, with both the client
and the server half in this process. Useful to check a password or a
verifier directory.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		exitWithError("failed to parse flags: %v", err)
	}

	env, err := loadEnvironment()
	if err != nil {
		exitWithError("%v", err)
	}

	authn, err := env.dirAuthenticator()
	if err != nil {
		exitWithError("%v", err)
	}
	defer authn.Close()

	if err := c.run(context.Background(), env, authn, *username, *password, *showKey); err != nil {
		authn.Close()
		exitWithError("login failed: %v", err)
	}
}

func (c *LoginCommand) run(ctx context.Context, env *environment, authn *auth.Authenticator, username, password string, showKey bool) error {
	username, password, err := c.console.credentials(username, password)
	if err != nil {
		return err
	}

	key, err := loginRoundTrip(ctx, env.params, authn, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.console.err, "Login verified for %s.\n", username)
	if showKey {
		fmt.Fprintln(c.console.out, key)
	}
	return nil
}

// loginRoundTrip plays the client against authn and returns the session key
// both sides agreed on.
func loginRoundTrip(ctx context.Context, params *srp.Params, authn *auth.Authenticator, username, password string) (string, error) {
	challenge, err := authn.BeginLogin(ctx, username)
	if err != nil {
		return "", err
	}

	x, err := challenge.KDF.Derive(params.Hash(), challenge.Salt, username, password)
	if err != nil {
		return "", err
	}

	attempt, err := srp.NewClient(params).Begin()
	if err != nil {
		return "", err
	}
	defer attempt.Clear()

	session, err := attempt.DeriveSession(challenge.ServerPublic, challenge.Salt, username, x)
	if err != nil {
		return "", err
	}

	result, err := authn.FinishLogin(ctx, challenge.AttemptID, attempt.Public(), session.Proof)
	if err != nil {
		return "", err
	}

	if err := attempt.Verify(result.ServerProof); err != nil {
		return "", err
	}

	return attempt.SessionKey()
}
