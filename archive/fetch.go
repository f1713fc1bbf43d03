package archive

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// DefaultTokenParam is the query parameter carrying the access token.
const DefaultTokenParam = "private_token"

var (
	// ErrOpenDestination is returned when the staging file cannot be opened
	ErrOpenDestination = errors.New("cannot open archive destination")
	// ErrTransfer is returned on network failures while downloading
	ErrTransfer = errors.New("file transfer error")
	// ErrToken wraps failures of the token source
	ErrToken = errors.New("cannot get token")
)

// Fetcher downloads archives to local files.
type Fetcher struct {
	Client *http.Client
	// Tokens supplies the credential appended to every URL; nil sends none
	Tokens     oauth2.TokenSource
	TokenParam string
	UserAgent  string
}

// Fetch streams url into dest and returns the number of bytes written.
// dest is created or truncated; a failed transfer may leave partial data.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dest string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, errors.Wrapf(ErrTransfer, "invalid url %q: %v", rawURL, err)
	}
	if f.Tokens != nil {
		tok, err := f.Tokens.Token()
		if err != nil {
			return 0, errors.Wrap(ErrToken, err.Error())
		}
		param := f.TokenParam
		if param == "" {
			param = DefaultTokenParam
		}
		q := u.Query()
		q.Set(param, tok.AccessToken)
		u.RawQuery = q.Encode()
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, errors.Wrapf(ErrOpenDestination, "could not open file `%s` for writing: %v", dest, err)
	}
	defer out.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, errors.Wrap(ErrTransfer, err.Error())
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(ErrTransfer, "%v", redact(err, u))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{
			"status": resp.StatusCode,
			"dest":   dest,
		}).Warn("archive request did not succeed")
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return n, errors.Wrapf(ErrTransfer, "%v", err)
	}
	if err := out.Close(); err != nil {
		return n, errors.Wrapf(ErrOpenDestination, "closing %s: %v", dest, err)
	}
	return n, nil
}

// redact keeps the token out of url errors.
func redact(err error, u *url.URL) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		clean := *u
		clean.RawQuery = ""
		return &url.Error{Op: uerr.Op, URL: clean.String(), Err: uerr.Err}
	}
	return err
}
