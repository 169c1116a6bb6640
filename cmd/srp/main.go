// Package main provides the srp CLI tool for managing SRP-6a verifiers.
//
// The srp CLI registers users into a verifier directory, checks passwords
// against stored verifiers with a full local login, removes users, and
// exercises the configured parameter set.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fzdarsky/srpkit/internal/cli/clicontext"
	"github.com/fzdarsky/srpkit/internal/cli/commands"
)

var (
	// version is set by build flags
	version = "dev"
	// commit is set by build flags
	commit = "none"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	args, command, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}

	switch command {
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("srp version %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	switch command {
	case "register":
		commands.NewRegisterCommand().Execute(args)
	case "login":
		commands.NewLoginCommand().Execute(args)
	case "remove":
		commands.NewRemoveCommand().Execute(args)
	case "selftest":
		commands.NewSelftestCommand().Execute(args)
	case "params":
		commands.NewParamsCommand().Execute(args)
	case "":
		fmt.Fprintf(os.Stderr, "Error: no command given\n\n")
		printUsage()
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// parseGlobalFlags processes global flags and returns remaining args and the command.
// Global flags can appear anywhere in the argument list.
// Examples:
//
//	srp -y remove alice                      (before command)
//	srp remove -y alice                      (after command)
//	srp login --config ./srp.yaml            (with a value)
func parseGlobalFlags(args []string) ([]string, string, error) {
	remainingArgs := make([]string, 0, len(args))
	var command string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--assumeyes" || arg == "-y":
			clicontext.SetAssumeYes(true)
			continue
		case arg == "--config" || arg == "-config":
			if i+1 >= len(args) {
				return nil, "", fmt.Errorf("%s requires a path", arg)
			}
			i++
			clicontext.SetConfigPath(args[i])
			continue
		case strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "-config="):
			clicontext.SetConfigPath(arg[strings.IndexByte(arg, '=')+1:])
			continue
		}

		// First non-flag argument is the command
		if command == "" && !isFlag(arg) {
			command = arg
			continue
		}

		// --help and --version before any command act as commands
		if command == "" && isSpecial(arg) {
			command = arg
			continue
		}

		remainingArgs = append(remainingArgs, arg)
	}

	return remainingArgs, command, nil
}

// isFlag returns true if the argument looks like a flag (starts with -).
func isFlag(arg string) bool {
	return len(arg) > 0 && arg[0] == '-'
}

func isSpecial(arg string) bool {
	switch arg {
	case "--help", "-h", "--version", "-v":
		return true
	}
	return false
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `srp - SRP-6a verifier management and login tool

Usage:
  srp [global flags] <command> [flags]

Available Commands:
  register   Enroll a user and store their verifier
  login      Check a password with a full SRP-6a login
  remove     Delete a user's verifier
  selftest   Register and log in throwaway users in memory
  params     Show the group, generator and multiplier in use

Global Flags:
  --help, -h        Show help information
  --version, -v     Show version information
  --assumeyes, -y   Automatically answer 'yes' to prompts (non-interactive mode)
  --config <path>   YAML configuration file (default: built-in defaults)

Environment:
  SRP_VERIFIER_DIR  Overrides storage.verifier_dir from the configuration

Examples:
  # Register a user interactively
  srp --config /etc/srp/config.yaml register

  # Check a password and print the session key
  srp login --username alice --show-key

  # Remove a user without confirmation
  srp -y remove alice

  # Run 100 logins, 8 at a time
  srp selftest --count 100 --concurrency 8 -o json

For detailed help on a specific command, run:
  srp <command> --help

`)
}
