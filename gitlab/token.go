package gitlab

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const sessionPath = "api/v3/session"

var (
	// ErrAuth is returned when the session endpoint cannot be reached
	ErrAuth = errors.New("cannot authenticate against the hosting service")
	// ErrParse is returned when the session response carries no token
	ErrParse = errors.New("cannot read token from session response")
)

// Credentials are used to obtain a token when no static one is configured.
type Credentials struct {
	Host      string
	User      string
	Password  string
	Token     string
	UserAgent string
}

// NewTokenSource returns a source handing out the static token when one is
// set, or a token obtained once from the session endpoint and reused for the
// life of the process.
func NewTokenSource(ctx context.Context, client *http.Client, creds Credentials) oauth2.TokenSource {
	if creds.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token})
	}
	return oauth2.ReuseTokenSource(nil, &sessionTokenSource{
		ctx:    ctx,
		client: client,
		creds:  creds,
	})
}

type sessionTokenSource struct {
	ctx    context.Context
	client *http.Client
	creds  Credentials
}

type session struct {
	PrivateToken string `json:"private_token"`
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	endpoint, err := url.Parse(s.creds.Host)
	if err != nil {
		return nil, errors.Wrapf(ErrAuth, "invalid host %q: %v", s.creds.Host, err)
	}
	endpoint = endpoint.JoinPath(sessionPath)
	log.WithField("endpoint", endpoint.String()).Info("getting token")

	form := url.Values{}
	if s.creds.User != "" {
		form.Set("login", s.creds.User)
		form.Set("password", s.creds.Password)
	}
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, endpoint.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(ErrAuth, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.creds.UserAgent != "" {
		req.Header.Set("User-Agent", s.creds.UserAgent)
	}
	if s.creds.User != "" {
		req.SetBasicAuth(s.creds.User, s.creds.Password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrAuth, "file transfer error: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrAuth, "file transfer error: %v", err)
	}
	var sess session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, errors.Wrapf(ErrParse, "invalid JSON: %s", truncate(body, 200))
	}
	if sess.PrivateToken == "" {
		return nil, errors.Wrapf(ErrParse, "no private_token in response (status %d)", resp.StatusCode)
	}
	return &oauth2.Token{AccessToken: sess.PrivateToken}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
