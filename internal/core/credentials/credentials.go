// Package credentials resolves API tokens before any adapter call is made.
// Tokens come from the environment, falling back to an interactive prompt on
// a terminal; the sync core itself never inspects token presence.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	// GitHubTokenVar is the environment variable holding the source token.
	GitHubTokenVar = "YOUSYNC_GITHUB_TOKEN"

	// YouTrackTokenVar is the environment variable holding the destination token.
	YouTrackTokenVar = "YOUSYNC_YOUTRACK_TOKEN"
)

// Resolve returns the token from envVar, prompting on the terminal with echo
// off when the variable is unset. Outside a terminal an unset variable is an
// error.
func Resolve(envVar, prompt string) (string, error) {
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%s is not set and stdin is not a terminal", envVar)
	}

	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", prompt, err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("empty %s", prompt)
	}
	return token, nil
}
