// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for writing test configurations,
// running commands and capturing their output.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slinkshare/slink/internal/configs"
	"github.com/slinkshare/slink/internal/privilege"
)

// testEnvironment holds the paths of an isolated slink installation.
type testEnvironment struct {
	ConfigPath string
	BaseDir    string
	DBPath     string
}

// setupTestEnvironment writes a configuration whose web principal is the
// current user, so stored files can be handed over without root.
func setupTestEnvironment(t *testing.T) *testEnvironment {
	t.Helper()

	self := privilege.Current()
	if self.User == "" || self.Group == "" {
		t.Skip("current user or group has no name on this host")
	}

	root := t.TempDir()
	env := &testEnvironment{
		ConfigPath: filepath.Join(root, "config", "slink.conf"),
		BaseDir:    filepath.Join(root, "www"),
		DBPath:     filepath.Join(root, "state", "shares.db"),
	}
	if err := os.MkdirAll(env.BaseDir, 0o755); err != nil {
		t.Fatalf("Failed to create base directory: %v", err)
	}

	cfg := &configs.Config{
		BaseURL:    "https://files.example.com",
		BaseDir:    env.BaseDir,
		DBPath:     env.DBPath,
		HashSecret: "command-test-secret",
		WebUser:    self.User,
		WebGroup:   self.Group,
		HashBytes:  7,
		DirMode:    0o750,
		FileMode:   0o640,
	}
	if err := cfg.Save(env.ConfigPath, false); err != nil {
		t.Fatalf("Failed to write test configuration: %v", err)
	}

	t.Setenv("NO_COLOR", "1")
	t.Cleanup(ResetGlobalState)
	return env
}

// run executes slink with args against this environment's configuration.
func (e *testEnvironment) run(args ...string) (string, error) {
	return executeCommand(nil, append([]string{"--config", e.ConfigPath}, args...)...)
}

// runWithInput is run with stdin replaced by input.
func (e *testEnvironment) runWithInput(input string, args ...string) (string, error) {
	return executeCommand(strings.NewReader(input), append([]string{"--config", e.ConfigPath}, args...)...)
}

// writeFile creates a file to be added and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// executeCommand resets global state and runs the root command.
func executeCommand(input io.Reader, args ...string) (string, error) {
	ResetGlobalState()
	if input != nil {
		SetInput(input)
	}
	RootCmd.SetArgs(args)
	return captureOutput(RootCmd.Execute)
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	// Channel to collect output
	outputChan := make(chan string, 2)

	// Start goroutines to read from pipes
	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stdoutReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		_, err := io.Copy(&buf, stderrReader)
		if err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		outputChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	// Collect output
	stdout := <-outputChan
	stderr := <-outputChan

	return stdout + stderr, err
}
