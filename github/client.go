package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v45/github"
	"golang.org/x/oauth2"
)

// NewClient creates a new github client for the apiURL, authenticated with
// the supplied token. An empty apiURL targets public github and an empty
// token makes anonymous requests.
func NewClient(ctx context.Context, base *http.Client, apiURL, token string) (client *github.Client, err error) {
	httpClient := base
	if token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		tokenService := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, tokenService)
	}

	if apiURL == "" {
		return github.NewClient(httpClient), nil
	}
	client, err = github.NewEnterpriseClient(apiURL, apiURL, httpClient)
	if err != nil {
		err = fmt.Errorf("cannot create github client: %v", err)
		return
	}
	return
}
