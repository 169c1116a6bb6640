// Package clicontext provides global CLI context and state management.
package clicontext

import "sync"

// Global holds flags that affect all commands.
type Global struct {
	// AssumeYes answers 'yes' to every confirmation prompt.
	AssumeYes bool

	// ConfigPath is the YAML configuration file. Empty means built-in
	// defaults.
	ConfigPath string
}

var (
	globalContext = &Global{}
	mu            sync.RWMutex
)

// Get returns a copy of the current global CLI context.
func Get() Global {
	mu.RLock()
	defer mu.RUnlock()
	return *globalContext
}

// Reset clears the global context.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalContext = &Global{}
}

// AssumeYes returns whether the CLI is in assume-yes mode.
func AssumeYes() bool {
	mu.RLock()
	defer mu.RUnlock()
	return globalContext.AssumeYes
}

// SetAssumeYes sets the assume-yes flag.
func SetAssumeYes(value bool) {
	mu.Lock()
	defer mu.Unlock()
	globalContext.AssumeYes = value
}

// ConfigPath returns the configuration file path.
func ConfigPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return globalContext.ConfigPath
}

// SetConfigPath sets the configuration file path.
func SetConfigPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	globalContext.ConfigPath = path
}
