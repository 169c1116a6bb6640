package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fzdarsky/srpkit/internal/auth"
)

// errAborted is returned when the user declines a confirmation.
var errAborted = errors.New("aborted")

// RemoveCommand implements the 'remove' command.
type RemoveCommand struct {
	console *console
}

// NewRemoveCommand creates a new remove command instance.
func NewRemoveCommand() *RemoveCommand {
	return &RemoveCommand{console: stdConsole()}
}

// Execute runs the remove command with the provided arguments.
func (c *RemoveCommand) Execute(args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: srp remove [flags] <username>

Delete a user's verifier record. Asks for confirmation unless --assumeyes
is given.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		exitWithError("failed to parse flags: %v", err)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: exactly one username is required\n\n")
		fs.Usage()
		os.Exit(1)
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

	if err := c.run(context.Background(), authn, fs.Arg(0)); err != nil {
		authn.Close()
		exitWithError("remove failed: %v", err)
	}
}

func (c *RemoveCommand) run(ctx context.Context, authn *auth.Authenticator, username string) error {
	if !c.console.promptYesNo(fmt.Sprintf("Remove user %s?", username)) {
		return errAborted
	}

	if err := authn.Unregister(ctx, username); err != nil {
		return err
	}

	fmt.Fprintf(c.console.err, "User %s removed.\n", username)
	return nil
}
