package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fzdarsky/srpkit/internal/logging"
	"github.com/fzdarsky/srpkit/pkg/srp"
)

// MinAttemptTTL is the shortest accepted attempts.ttl.
const MinAttemptTTL = 30 * time.Second

// Validate performs comprehensive validation on the configuration.
func Validate(cfg *Config) error {
	if err := validateSRP(cfg); err != nil {
		return fmt.Errorf("srp validation failed: %w", err)
	}

	if err := cfg.StretchParams().Validate(); err != nil {
		return fmt.Errorf("stretch validation failed: %w", err)
	}

	if err := validateAttempts(cfg); err != nil {
		return fmt.Errorf("attempts validation failed: %w", err)
	}

	if cfg.Storage.VerifierDir == "" {
		return errors.New("storage validation failed: verifier_dir is required")
	}

	if err := validateLogging(cfg); err != nil {
		return fmt.Errorf("logging validation failed: %w", err)
	}

	return nil
}

func validateSRP(cfg *Config) error {
	if _, err := srp.GroupByBits(cfg.SRP.Group); err != nil {
		return err
	}

	if _, err := srp.ParseHash(cfg.SRP.Hash); err != nil {
		return err
	}

	return nil
}

func validateAttempts(cfg *Config) error {
	if _, err := cfg.GetAttemptTTL(); err != nil {
		return err
	}

	if cfg.Attempts.MaxFailures < 1 {
		return errors.New("max_failures must be at least 1")
	}

	return nil
}

func validateLogging(cfg *Config) error {
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}

	if _, err := logging.ParseFormat(cfg.Logging.Format); err != nil {
		return err
	}

	return nil
}
