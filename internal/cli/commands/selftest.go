package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fzdarsky/srpkit/internal/auth"
	"github.com/fzdarsky/srpkit/internal/cli/output"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// SelftestReport summarizes a selftest run.
type SelftestReport struct {
	Group    int    `json:"group" yaml:"group"`
	Hash     string `json:"hash" yaml:"hash"`
	KDF      string `json:"kdf" yaml:"kdf"`
	Logins   int    `json:"logins" yaml:"logins"`
	Rejected int    `json:"rejected" yaml:"rejected"`
	Duration string `json:"duration" yaml:"duration"`
}

// SelftestCommand implements the 'selftest' command.
type SelftestCommand struct {
	console *console
}

// NewSelftestCommand creates a new selftest command instance.
func NewSelftestCommand() *SelftestCommand {
	return &SelftestCommand{console: stdConsole()}
}

// Execute runs the selftest command with the provided arguments.
func (c *SelftestCommand) Execute(args []string) {
	fs := flag.NewFlagSet("selftest", flag.ExitOnError)

	count := fs.Int("count", 10, "Number of users to register and log in")
	concurrency := fs.Int("concurrency", 4, "Number of logins to run in parallel")
	argon := fs.Bool("argon2id", false, "Stretch passwords with the configured Argon2id parameters (slow)")
	outputFormat := fs.String("o", "yaml", "Output format: yaml or json")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: srp selftest [flags]

Register throwaway users in memory and log each of them in, in parallel,
with the configured group and hash. Also checks that a wrong password is
rejected. Nothing is written to the verifier directory.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		exitWithError("failed to parse flags: %v", err)
	}

	format, err := output.ParseFormat(*outputFormat)
	if err != nil {
		exitWithError("%v", err)
	}

	env, err := loadEnvironment()
	if err != nil {
		exitWithError("%v", err)
	}

	kdf := auth.KDF{Name: auth.KDFRFC5054}
	if *argon {
		kdf = env.kdf()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runSelftest(ctx, env, kdf, *count, *concurrency)
	if err != nil {
		stop()
		exitWithError("selftest failed: %v", err)
	}

	if err := output.Write(c.console.out, report, format); err != nil {
		exitWithError("failed to write report: %v", err)
	}
}

func runSelftest(ctx context.Context, env *environment, kdf auth.KDF, count, concurrency int) (*SelftestReport, error) {
	if count < 1 {
		return nil, fmt.Errorf("count must be at least 1, got %d", count)
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("concurrency must be at least 1, got %d", concurrency)
	}

	authn, err := env.authenticator(auth.NewMemoryVerifierStore())
	if err != nil {
		return nil, err
	}
	defer authn.Close()

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range count {
		g.Go(func() error {
			return selftestLogin(gctx, env.params, authn, kdf, i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// A wrong password must not get through.
	rejected := 0
	if err := enrollSelftestUser(ctx, env.params, authn, kdf, "selftest-negative", "right"); err != nil {
		return nil, err
	}
	_, err = loginRoundTrip(ctx, env.params, authn, "selftest-negative", "wrong")
	switch {
	case errors.Is(err, auth.ErrAuthenticationFailed):
		rejected++
	case err == nil:
		return nil, errors.New("login with a wrong password succeeded")
	default:
		return nil, fmt.Errorf("unexpected error for wrong password: %w", err)
	}

	return &SelftestReport{
		Group:    env.params.Group().Bits(),
		Hash:     srp.HashName(env.params.Hash()),
		KDF:      kdf.Name,
		Logins:   count,
		Rejected: rejected,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	}, nil
}

func selftestLogin(ctx context.Context, params *srp.Params, authn *auth.Authenticator, kdf auth.KDF, i int) error {
	username := fmt.Sprintf("selftest-%d", i)
	password := fmt.Sprintf("password-%d", i)

	if err := enrollSelftestUser(ctx, params, authn, kdf, username, password); err != nil {
		return err
	}

	if _, err := loginRoundTrip(ctx, params, authn, username, password); err != nil {
		return fmt.Errorf("login as %s: %w", username, err)
	}
	return nil
}

func enrollSelftestUser(ctx context.Context, params *srp.Params, authn *auth.Authenticator, kdf auth.KDF, username, password string) error {
	rec, err := auth.Enroll(params, kdf, username, password)
	if err != nil {
		return fmt.Errorf("enroll %s: %w", username, err)
	}
	if err := authn.Register(ctx, rec); err != nil {
		return fmt.Errorf("register %s: %w", username, err)
	}
	return nil
}
