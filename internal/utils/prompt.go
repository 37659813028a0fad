package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirm writes prompt followed by " [y/N] " and reads one line. Only an
// answer starting with y or Y confirms; end of input declines.
func Confirm(r *bufio.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(w, "%s [y/N] ", prompt)

	input, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	answer := strings.TrimSpace(input)
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// PromptWithDefault asks for a value, returning defaultValue on an empty
// answer.
func PromptWithDefault(r *bufio.Reader, w io.Writer, prompt, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(w, "%s [%s]: ", prompt, defaultValue)
	} else {
		fmt.Fprintf(w, "%s: ", prompt)
	}

	input, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input != "" {
		return input, nil
	}
	if defaultValue == "" && err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return defaultValue, nil
}
