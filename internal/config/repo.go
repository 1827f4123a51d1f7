package config

import (
	"fmt"
	"regexp"
	"strings"
)

// repoPattern matches owner/repo format.
var repoPattern = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)/([a-zA-Z0-9_.-]+)$`)

// ParseRepo parses a repository string into owner and repo.
// Supported formats:
//   - "https://github.com/owner/repo"
//   - "https://github.com/owner/repo.git"
//   - "https://github.com/owner/repo/tree/main"
//   - "https://github.com/owner/repo/blob/main/file.md"
//   - "github.com/owner/repo"
//   - "owner/repo"
func ParseRepo(repoStr string) (owner, repo string, err error) {
	if repoStr == "" {
		return "", "", fmt.Errorf("repository string is empty")
	}

	// Strip protocol
	repoStr = strings.TrimPrefix(repoStr, "https://")
	repoStr = strings.TrimPrefix(repoStr, "http://")

	repoStr = strings.TrimPrefix(repoStr, "github.com/")

	// Strip .git suffix and trailing slashes
	repoStr = strings.TrimSuffix(repoStr, ".git")
	repoStr = strings.TrimSuffix(repoStr, "/")

	// Only owner/repo matters; tree/blob suffixes are dropped.
	parts := strings.Split(repoStr, "/")
	if len(parts) >= 2 {
		repoStr = parts[0] + "/" + parts[1]
	}

	matches := repoPattern.FindStringSubmatch(repoStr)
	if matches == nil {
		return "", "", fmt.Errorf("invalid repository format: %s (expected owner/repo)", repoStr)
	}

	return matches[1], matches[2], nil
}

// FileRef points at a single file in a GitHub repository.
type FileRef struct {
	Owner string
	Repo  string
	Path  string
	Ref   string // empty for the default branch
}

// String returns owner/repo/path@ref.
func (f FileRef) String() string {
	s := fmt.Sprintf("%s/%s/%s", f.Owner, f.Repo, f.Path)
	if f.Ref != "" {
		s += "@" + f.Ref
	}
	return s
}

// ParseFileRef builds a FileRef from a repository string, a path inside it
// and an optional ref. A blob URL carries all three and path and ref may be
// left empty:
//
//	https://github.com/owner/repo/blob/main/web/index.html
func ParseFileRef(repoStr, path, ref string) (FileRef, error) {
	owner, repo, err := ParseRepo(repoStr)
	if err != nil {
		return FileRef{}, err
	}

	if path == "" {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(repoStr, "https://"), "http://")
		trimmed = strings.TrimPrefix(trimmed, "github.com/")
		parts := strings.Split(trimmed, "/")
		if len(parts) >= 5 && parts[2] == "blob" {
			if ref == "" {
				ref = parts[3]
			}
			path = strings.Join(parts[4:], "/")
		}
	}

	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return FileRef{}, fmt.Errorf("no file path given for %s/%s", owner, repo)
	}

	return FileRef{Owner: owner, Repo: repo, Path: path, Ref: ref}, nil
}
