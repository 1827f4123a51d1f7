// Package github reads inputs for minification from GitHub repositories.
package github

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/HartBrook/shrink/internal/errors"
)

// EnvGitHubToken is the environment variable read when the gh CLI has no
// token.
const EnvGitHubToken = "SHRINK_GITHUB_TOKEN"

// tokenSource is one step of the auth chain. An empty token with a nil
// error means the source is not configured.
type tokenSource struct {
	name  string
	token func() (string, error)
}

var tokenSources = []tokenSource{
	{name: "gh CLI", token: GetTokenFromGHCLI},
	{name: EnvGitHubToken, token: func() (string, error) { return GetTokenFromEnv(), nil }},
}

// GetToken resolves the token used to fetch inputs: `gh auth token` first,
// then SHRINK_GITHUB_TOKEN.
func GetToken() (string, error) {
	return resolveToken(tokenSources)
}

func resolveToken(sources []tokenSource) (string, error) {
	var causes []error
	for _, src := range sources {
		token, err := src.token()
		if err != nil {
			causes = append(causes, fmt.Errorf("%s: %w", src.name, err))
			continue
		}
		if token != "" {
			slog.Debug("resolved GitHub token", "source", src.name)
			return token, nil
		}
	}
	return "", errors.GitHubAuthFailed(stderrors.Join(causes...))
}

// GetTokenFromGHCLI runs `gh auth token`.
func GetTokenFromGHCLI() (string, error) {
	output, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// GetTokenFromEnv reads SHRINK_GITHUB_TOKEN.
func GetTokenFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvGitHubToken))
}
