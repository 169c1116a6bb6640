// Package config provides configuration loading and validation for the SRP
// tools.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fzdarsky/srpkit/internal/stretch"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// EnvVerifierDir overrides storage.verifier_dir when set.
const EnvVerifierDir = "SRP_VERIFIER_DIR"

// Config represents the SRP configuration file.
type Config struct {
	SRP      SRPSettings     `yaml:"srp"`
	Stretch  StretchSettings `yaml:"stretch"`
	Attempts AttemptSettings `yaml:"attempts"`
	Storage  StorageSettings `yaml:"storage"`
	Logging  LoggingSettings `yaml:"logging"`
}

// SRPSettings selects the protocol parameters.
type SRPSettings struct {
	Group            int    `yaml:"group"`
	Hash             string `yaml:"hash"`
	LegacyMultiplier bool   `yaml:"legacy_multiplier"`
}

// StretchSettings configures Argon2id password stretching.
type StretchSettings struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
}

// AttemptSettings configures pending login attempts.
type AttemptSettings struct {
	TTL         string `yaml:"ttl"`
	MaxFailures int    `yaml:"max_failures"`
}

// StorageSettings configures where verifier records live.
type StorageSettings struct {
	VerifierDir string `yaml:"verifier_dir"`
}

// LoggingSettings contains logging configuration.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used for keys a file omits.
func Default() *Config {
	st := stretch.DefaultParams()
	return &Config{
		SRP: SRPSettings{
			Group: 2048,
			Hash:  "sha256",
		},
		Stretch: StretchSettings{
			Time:      st.Time,
			MemoryKiB: st.MemoryKiB,
			Threads:   st.Threads,
		},
		Attempts: AttemptSettings{
			TTL:         "5m",
			MaxFailures: 3,
		},
		Storage: StorageSettings{
			VerifierDir: "/var/lib/srp/verifiers",
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the configuration file at path over the defaults and validates
// the result. An empty path yields the defaults. Unknown keys are rejected.
//
//nolint:gosec // G304: Config path is from command-line argument
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if dir := os.Getenv(EnvVerifierDir); dir != "" {
		cfg.Storage.VerifierDir = dir
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// SRPParams builds the protocol parameter set.
func (c *Config) SRPParams() (*srp.Params, error) {
	group, err := srp.GroupByBits(c.SRP.Group)
	if err != nil {
		return nil, err
	}

	hash, err := srp.ParseHash(c.SRP.Hash)
	if err != nil {
		return nil, err
	}

	var opts []srp.Option
	if c.SRP.LegacyMultiplier {
		opts = append(opts, srp.WithLegacyMultiplier())
	}

	return srp.NewParams(group, hash, opts...)
}

// StretchParams returns the Argon2id parameters. The derived key is as long
// as the configured hash output.
func (c *Config) StretchParams() stretch.Params {
	p := stretch.Params{
		Time:      c.Stretch.Time,
		MemoryKiB: c.Stretch.MemoryKiB,
		Threads:   c.Stretch.Threads,
	}
	if hash, err := srp.ParseHash(c.SRP.Hash); err == nil {
		p.KeyLen = uint32(hash.Size()) //nolint:gosec // hash sizes are at most 64
	}
	return p
}

// GetAttemptTTL parses and returns how long a pending login attempt lives.
func (c *Config) GetAttemptTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Attempts.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid attempts.ttl: %w", err)
	}

	if ttl < MinAttemptTTL {
		return 0, fmt.Errorf("attempts.ttl must be at least %s", MinAttemptTTL)
	}

	return ttl, nil
}
