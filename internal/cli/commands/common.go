// Package commands provides the subcommands of the srp CLI tool.
package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/fzdarsky/srpkit/internal/auth"
	"github.com/fzdarsky/srpkit/internal/cli/clicontext"
	"github.com/fzdarsky/srpkit/internal/config"
	"github.com/fzdarsky/srpkit/internal/logging"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// console is where a command reads prompts from and writes to.
type console struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	err    io.Writer
}

func newConsole(in io.Reader, out, errOut io.Writer) *console {
	return &console{in: in, reader: bufio.NewReader(in), out: out, err: errOut}
}

func stdConsole() *console {
	return newConsole(os.Stdin, os.Stdout, os.Stderr)
}

func (c *console) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptUsername prompts for a username on stderr.
func (c *console) promptUsername() (string, error) {
	fmt.Fprintf(c.err, "Username: ")
	username, err := c.readLine()
	return strings.TrimSpace(username), err
}

// promptPassword reads a password without echo when stdin is a terminal,
// and a plain line otherwise.
func (c *console) promptPassword(label string) (string, error) {
	fmt.Fprintf(c.err, "%s: ", label)

	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintf(c.err, "\n")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	return c.readLine()
}

// promptYesNo asks a yes/no question. --assumeyes answers yes.
func (c *console) promptYesNo(question string) bool {
	if clicontext.AssumeYes() {
		return true
	}

	for {
		fmt.Fprintf(c.err, "%s (yes/no): ", question)

		response, err := c.readLine()
		if err != nil {
			return false
		}

		switch strings.ToLower(strings.TrimSpace(response)) {
		case "yes", "y":
			return true
		case "no", "n":
			return false
		default:
			fmt.Fprintf(c.err, "Please answer 'yes' or 'no'\n")
		}
	}
}

// credentials fills in whichever of username and password were not given
// as flags.
func (c *console) credentials(username, password string) (string, string, error) {
	var err error
	if username == "" {
		if username, err = c.promptUsername(); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = c.promptPassword("Password"); err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

// environment is the configuration shared by every command.
type environment struct {
	cfg    *config.Config
	params *srp.Params
	logger *logging.Logger
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.Load(clicontext.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newEnvironment(cfg)
}

func newEnvironment(cfg *config.Config) (*environment, error) {
	params, err := cfg.SRPParams()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:    cfg,
		params: params,
		logger: logging.New(level, format),
	}, nil
}

// kdf returns the KDF new registrations use.
func (e *environment) kdf() auth.KDF {
	return auth.Argon2idKDF(e.cfg.StretchParams())
}

func (e *environment) authenticator(store auth.VerifierStore) (*auth.Authenticator, error) {
	ttl, err := e.cfg.GetAttemptTTL()
	if err != nil {
		return nil, err
	}

	return auth.NewAuthenticator(e.params, store, e.logger,
		auth.WithAttemptTTL(ttl),
		auth.WithMaxFailures(e.cfg.Attempts.MaxFailures),
		auth.WithDecoyKDF(e.kdf(), auth.KDF{Name: auth.KDFRFC5054}),
	)
}

func (e *environment) dirAuthenticator() (*auth.Authenticator, error) {
	store, err := auth.NewDirVerifierStore(e.cfg.Storage.VerifierDir)
	if err != nil {
		return nil, err
	}
	return e.authenticator(store)
}

// exitWithError prints an error message to stderr and exits with status 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
