package gitlab

import (
	"context"
	"fmt"
	"net/url"
)

// Archives locates repository archives on a GitLab host.
type Archives struct {
	// Host is the base URL, e.g. https://gitlab.com/
	Host string
}

// ArchiveURL returns the zip archive URL of namespace/repo at ref.
func (a Archives) ArchiveURL(_ context.Context, namespace, repo, ref string) (string, error) {
	if namespace == "" {
		return "", fmt.Errorf("no namespace for repository %s", repo)
	}
	u, err := url.Parse(a.Host)
	if err != nil {
		return "", fmt.Errorf("cannot parse host %q: %v", a.Host, err)
	}
	u = u.JoinPath(namespace, repo, "repository", "archive.zip")
	q := u.Query()
	q.Set("ref", ref)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
