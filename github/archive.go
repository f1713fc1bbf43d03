package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v45/github"
)

// Archives locates repository zipballs through the GitHub API.
// The returned links are pre-signed and need no further credentials.
type Archives struct {
	Client *github.Client
}

// ArchiveURL returns the zipball link of owner/repo at ref.
func (a Archives) ArchiveURL(ctx context.Context, owner, repo, ref string) (string, error) {
	if owner == "" {
		return "", fmt.Errorf("no owner for repository %s", repo)
	}
	opts := &github.RepositoryContentGetOptions{Ref: ref}
	link, resp, err := a.Client.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, opts, false)
	if err != nil {
		return "", fmt.Errorf("cannot get archive link for %s/%s: %v", owner, repo, err)
	}
	if resp.StatusCode != http.StatusFound {
		return "", fmt.Errorf("getting archive link for %s/%s returned status %d", owner, repo, resp.StatusCode)
	}
	return link.String(), nil
}
