package main

import (
	"testing"

	"github.com/fzdarsky/srpkit/internal/cli/clicontext"
)

func TestParseGlobalFlags(t *testing.T) {
	tests := []struct {
		name               string
		input              []string
		expectedCommand    string
		expectedArgs       []string
		expectedAssumeYes  bool
		expectedConfigPath string
		expectErr          bool
	}{
		{
			name:              "global flag before command",
			input:             []string{"-y", "remove", "alice"},
			expectedCommand:   "remove",
			expectedArgs:      []string{"alice"},
			expectedAssumeYes: true,
		},
		{
			name:              "global flag after command",
			input:             []string{"remove", "-y", "alice"},
			expectedCommand:   "remove",
			expectedArgs:      []string{"alice"},
			expectedAssumeYes: true,
		},
		{
			name:              "global flag at end",
			input:             []string{"login", "--username", "alice", "-y"},
			expectedCommand:   "login",
			expectedArgs:      []string{"--username", "alice"},
			expectedAssumeYes: true,
		},
		{
			name:              "long form global flag",
			input:             []string{"remove", "--assumeyes", "alice"},
			expectedCommand:   "remove",
			expectedArgs:      []string{"alice"},
			expectedAssumeYes: true,
		},
		{
			name:            "no global flag",
			input:           []string{"login", "--username", "alice"},
			expectedCommand: "login",
			expectedArgs:    []string{"--username", "alice"},
		},
		{
			name:               "config with separate value",
			input:              []string{"--config", "/etc/srp.yaml", "register"},
			expectedCommand:    "register",
			expectedArgs:       []string{},
			expectedConfigPath: "/etc/srp.yaml",
		},
		{
			name:               "config with equals",
			input:              []string{"selftest", "--config=./srp.yaml", "--count", "5"},
			expectedCommand:    "selftest",
			expectedArgs:       []string{"--count", "5"},
			expectedConfigPath: "./srp.yaml",
		},
		{
			name:      "config without value",
			input:     []string{"login", "--config"},
			expectErr: true,
		},
		{
			name:            "help before command",
			input:           []string{"--help"},
			expectedCommand: "--help",
			expectedArgs:    []string{},
		},
		{
			name:            "help after command goes to the command",
			input:           []string{"params", "--help"},
			expectedCommand: "params",
			expectedArgs:    []string{"--help"},
		},
		{
			name:            "command only",
			input:           []string{"params"},
			expectedCommand: "params",
			expectedArgs:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset global context before each test
			clicontext.Reset()

			args, command, err := parseGlobalFlags(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("parseGlobalFlags() expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGlobalFlags() unexpected error: %v", err)
			}

			if command != tt.expectedCommand {
				t.Errorf("parseGlobalFlags() command = %v, want %v", command, tt.expectedCommand)
			}

			if len(args) != len(tt.expectedArgs) {
				t.Fatalf("parseGlobalFlags() args length = %v, want %v", len(args), len(tt.expectedArgs))
			}
			for i, arg := range args {
				if arg != tt.expectedArgs[i] {
					t.Errorf("parseGlobalFlags() args[%d] = %v, want %v", i, arg, tt.expectedArgs[i])
				}
			}

			if clicontext.AssumeYes() != tt.expectedAssumeYes {
				t.Errorf("AssumeYes = %v, want %v", clicontext.AssumeYes(), tt.expectedAssumeYes)
			}
			if clicontext.ConfigPath() != tt.expectedConfigPath {
				t.Errorf("ConfigPath = %q, want %q", clicontext.ConfigPath(), tt.expectedConfigPath)
			}
		})
	}
}

func TestIsFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"-y", true},
		{"--assumeyes", true},
		{"--config=x", true},
		{"register", false},
		{"", false},
		{"alice", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isFlag(tt.input); got != tt.expected {
				t.Errorf("isFlag(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
