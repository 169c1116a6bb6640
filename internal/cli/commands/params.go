package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/fzdarsky/srpkit/internal/cli/output"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// ParamsInfo describes a parameter set.
type ParamsInfo struct {
	Group      string `json:"group" yaml:"group"`
	Bits       int    `json:"bits" yaml:"bits"`
	Hash       string `json:"hash" yaml:"hash"`
	N          string `json:"n" yaml:"n"`
	G          string `json:"g" yaml:"g"`
	K          string `json:"k" yaml:"k"`
	Multiplier string `json:"multiplier" yaml:"multiplier"`
}

// ParamsCommand implements the 'params' command.
type ParamsCommand struct {
	console *console
}

// NewParamsCommand creates a new params command instance.
func NewParamsCommand() *ParamsCommand {
	return &ParamsCommand{console: stdConsole()}
}

// Execute runs the params command with the provided arguments.
func (c *ParamsCommand) Execute(args []string) {
	fs := flag.NewFlagSet("params", flag.ExitOnError)

	group := fs.Int("group", 0, "Group size in bits (defaults to the configured group)")
	hash := fs.String("hash", "", "Hash function (defaults to the configured hash)")
	outputFormat := fs.String("o", "yaml", "Output format: yaml or json")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: srp params [flags]

Print the group, generator and multiplier k for a parameter set.

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

	params, err := overrideParams(env.params, *group, *hash)
	if err != nil {
		exitWithError("%v", err)
	}

	if err := output.Write(c.console.out, describeParams(params), format); err != nil {
		exitWithError("failed to write parameters: %v", err)
	}
}

// overrideParams rebuilds base with a different group or hash. Zero values
// keep base's choice.
func overrideParams(base *srp.Params, bits int, hash string) (*srp.Params, error) {
	if bits == 0 && hash == "" {
		return base, nil
	}

	group := base.Group()
	if bits != 0 {
		g, err := srp.GroupByBits(bits)
		if err != nil {
			return nil, err
		}
		group = g
	}

	h := base.Hash()
	if hash != "" {
		parsed, err := srp.ParseHash(hash)
		if err != nil {
			return nil, err
		}
		h = parsed
	}

	var opts []srp.Option
	if base.Legacy() {
		opts = append(opts, srp.WithLegacyMultiplier())
	}
	return srp.NewParams(group, h, opts...)
}

func describeParams(p *srp.Params) ParamsInfo {
	multiplier := "H(N, g)"
	if p.Legacy() {
		multiplier = "3"
	}

	return ParamsInfo{
		Group:      p.Group().Name,
		Bits:       p.Group().Bits(),
		Hash:       srp.HashName(p.Hash()),
		N:          p.N().Hex(),
		G:          p.G().Hex(),
		K:          p.K().Hex(),
		Multiplier: multiplier,
	}
}
