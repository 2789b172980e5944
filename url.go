package repohealth

import (
	"net/url"
	"strings"

	"github.com/jmgilman/go/repohealth/errors"
)

// ParseRepositoryURL extracts the owner and repository name from a GitHub
// repository URL.
//
// Accepted forms:
//   - github.com/owner/repo
//   - https://github.com/owner/repo (optionally ending in .git or followed by
//     further path segments such as /tree/main)
//   - git@github.com:owner/repo.git
//   - owner/repo
func ParseRepositoryURL(raw string) (owner, repo string, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", invalidURL(raw, "repository URL is required")
	}

	// git@github.com:owner/repo → github.com/owner/repo
	if at := strings.Index(s, "@"); at >= 0 && !strings.Contains(s, "://") {
		s = strings.Replace(s[at+1:], ":", "/", 1)
	}

	var parts []string
	switch {
	case strings.Contains(s, "://"):
		u, perr := url.Parse(s)
		if perr != nil {
			return "", "", invalidURL(raw, "malformed repository URL")
		}
		if !isGitHubHost(u.Hostname()) {
			return "", "", invalidURL(raw, "not a GitHub URL")
		}
		parts = splitPath(u.Path)
	default:
		segments := splitPath(s)
		switch {
		case len(segments) > 0 && isGitHubHost(segments[0]):
			parts = segments[1:]
		case len(segments) == 2:
			// owner/repo shorthand
			parts = segments
		default:
			return "", "", invalidURL(raw, "not a GitHub URL")
		}
	}

	if len(parts) < 2 {
		return "", "", invalidURL(raw, "repository URL must name an owner and a repository")
	}

	owner = parts[0]
	repo = strings.TrimSuffix(parts[1], ".git")
	if owner == "" || repo == "" {
		return "", "", invalidURL(raw, "repository URL must name an owner and a repository")
	}
	return owner, repo, nil
}

func isGitHubHost(host string) bool {
	host = strings.ToLower(host)
	return host == "github.com" || host == "www.github.com"
}

func splitPath(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func invalidURL(raw, message string) error {
	return errors.WithContext(errors.New(errors.CodeInvalidInput, message), "url", raw)
}
