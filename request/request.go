// Package request turns incoming HTTP requests into sync triggers.
package request

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/go-playground/webhooks.v3/gitlab"

	"github.com/redbadger/gitlab-sync/model"
)

const (
	eventHeader = "X-Gitlab-Event"
	tokenHeader = "X-Gitlab-Token"
	maxPayload  = 5 << 20
)

var (
	// ErrSecret is returned when the webhook secret does not match
	ErrSecret = errors.New("webhook secret mismatch")
	// ErrPayload is returned when the webhook body cannot be decoded
	ErrPayload = errors.New("invalid webhook payload")
	// ErrEvent is returned for events other than pushes
	ErrEvent = errors.New("unsupported webhook event")
)

// Manual decodes a manual request. Query and form values are accepted;
// "setup" and "key" are understood as aliases of "repo" and "authKey".
// A "retry" parameter, with or without a value, asks for a retry unless a
// repository is named.
func Manual(r *http.Request) (model.Trigger, error) {
	if err := r.ParseForm(); err != nil {
		return nil, errors.Wrap(err, "cannot parse request")
	}
	repo := first(r.Form, "repo", "setup")
	if _, ok := r.Form["retry"]; ok && repo == "" {
		return model.Retry{}, nil
	}
	return model.FullSync{DeploymentRequest: model.DeploymentRequest{
		Repository: repo,
		Team:       first(r.Form, "team"),
		AuthKey:    first(r.Form, "authKey", "key"),
		Clean:      flag(r.Form.Get("clean")),
	}}, nil
}

// Webhook decodes a GitLab push notification. When secret is not empty the
// X-Gitlab-Token header must carry it. The deploy auth key travels in the
// "authKey" query parameter.
func Webhook(r *http.Request, secret string) (model.Trigger, error) {
	if secret != "" {
		got := r.Header.Get(tokenHeader)
		if subtle.ConstantTimeCompare([]byte(secret), []byte(got)) != 1 {
			return nil, ErrSecret
		}
	}
	if ev := r.Header.Get(eventHeader); ev != "" && gitlab.Event(ev) != gitlab.PushEvents {
		return nil, errors.Wrapf(ErrEvent, "%q", ev)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayload))
	if err != nil {
		return nil, errors.Wrap(ErrPayload, err.Error())
	}
	var pl gitlab.PushEventPayload
	if err := json.Unmarshal(body, &pl); err != nil {
		return nil, errors.Wrap(ErrPayload, err.Error())
	}
	homepage := pl.Repository.Homepage
	if homepage == "" {
		return nil, errors.Wrap(ErrPayload, "repository homepage missing")
	}
	log.WithFields(log.Fields{
		"homepage": homepage,
		"ref":      pl.Ref,
		"after":    pl.After,
	}).Info("push received")

	return model.WebhookSync{
		Homepage: homepage,
		AuthKey:  first(r.URL.Query(), "authKey", "key"),
	}, nil
}

func first(values map[string][]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := values[k]; ok && len(v) > 0 && v[0] != "" {
			return v[0]
		}
	}
	return ""
}

func flag(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
