package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fzdarsky/srpkit/internal/auth"
)

// RegisterCommand implements the 'register' command.
type RegisterCommand struct {
	console *console
}

// NewRegisterCommand creates a new register command instance.
func NewRegisterCommand() *RegisterCommand {
	return &RegisterCommand{console: stdConsole()}
}

// Execute runs the register command with the provided arguments.
func (c *RegisterCommand) Execute(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)

	username := fs.String("username", "", "Username to register (prompts if not provided)")
	password := fs.String("password", "", "Password (prompts twice if not provided)")
	legacy := fs.Bool("legacy-kdf", false, "Derive x as in RFC 5054 instead of with Argon2id")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: srp register [flags]

Enroll a user: draw a salt, stretch the password and store the resulting
verifier in the configured verifier directory. The password itself is
never stored.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Interactive
  srp register

  # Non-interactive (for CI/CD)
  srp --config /etc/srp/config.yaml register --username alice --password secret
`)
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

	kdf := env.kdf()
	if *legacy {
		kdf = auth.KDF{Name: auth.KDFRFC5054}
	}

	if err := c.run(context.Background(), env, authn, kdf, *username, *password); err != nil {
		authn.Close()
		exitWithError("registration failed: %v", err)
	}
}

func (c *RegisterCommand) run(ctx context.Context, env *environment, authn *auth.Authenticator, kdf auth.KDF, username, password string) error {
	var err error
	if username == "" {
		if username, err = c.console.promptUsername(); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = c.console.promptPassword("Password"); err != nil {
			return err
		}
		confirm, err := c.console.promptPassword("Confirm password")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	rec, err := auth.Enroll(env.params, kdf, username, password)
	if err != nil {
		return err
	}

	if err := authn.Register(ctx, rec); err != nil {
		return err
	}

	fmt.Fprintf(c.console.err, "User %s registered (group %d, %s, kdf %s).\n", rec.Username, rec.Group, rec.Hash, rec.KDF.Name)
	return nil
}
