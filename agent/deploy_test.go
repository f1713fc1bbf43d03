package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/deployer"
	"github.com/redbadger/gitlab-sync/journal"
	"github.com/redbadger/gitlab-sync/model"
)

type fakeRunner struct {
	triggers []model.Trigger
	err      error
	ctxErr   error
}

func (f *fakeRunner) Run(ctx context.Context, trigger model.Trigger, out io.Writer) (*deployer.Result, error) {
	f.triggers = append(f.triggers, trigger)
	f.ctxErr = ctx.Err()
	fmt.Fprintf(out, "ran %s\n", trigger.Kind())
	return &deployer.Result{}, f.err
}

type fakeHistory map[string][]journal.Entry

func (f fakeHistory) History(repo string, limit int) ([]journal.Entry, error) {
	e := f[repo]
	if limit > 0 && len(e) > limit {
		e = e[:limit]
	}
	return e, nil
}

func newTestServer(runner Runner, j Historian) *Server {
	cfg := &config.Config{HookPath: "/webhooks", WebhookSecret: "hook-secret"}
	return NewServer(cfg, runner, j)
}

func serve(s *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Negroni.ServeHTTP(w, r)
	return w
}

func TestSyncEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		err        error
		wantStatus int
		want       model.Trigger
	}{
		{
			"full sync",
			"GET", "/sync?repo=demo&authKey=k",
			nil,
			http.StatusOK,
			model.FullSync{DeploymentRequest: model.DeploymentRequest{Repository: "demo", AuthKey: "k"}},
		},
		{
			"unknown repository",
			"POST", "/sync?repo=nope",
			&deployer.Error{Kind: deployer.UnknownRepository},
			http.StatusNotFound,
			model.FullSync{DeploymentRequest: model.DeploymentRequest{Repository: "nope"}},
		},
		{
			"clean without key",
			"GET", "/sync?repo=demo&clean=1",
			&deployer.Error{Kind: deployer.Forbidden},
			http.StatusForbidden,
			model.FullSync{DeploymentRequest: model.DeploymentRequest{Repository: "demo", Clean: true}},
		},
		{
			"retry",
			"GET", "/sync?retry",
			&deployer.Error{Kind: deployer.NotSupported},
			http.StatusNotImplemented,
			model.Retry{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{err: tt.err}
			w := serve(newTestServer(runner, nil), tt.method, tt.target, "", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
			require.Len(t, runner.triggers, 1)
			assert.Equal(t, tt.want, runner.triggers[0])
			assert.Contains(t, w.Body.String(), "ran "+tt.want.Kind())
			assert.NoError(t, runner.ctxErr)
		})
	}
}

func TestWebhookEndpoint(t *testing.T) {
	payload := `{"object_kind": "push", "repository": {"homepage": "http://example.com/acme/demo"}}`
	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantRuns   int
	}{
		{"valid secret", "hook-secret", http.StatusOK, 1},
		{"wrong secret", "nope", http.StatusUnauthorized, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			w := serve(newTestServer(runner, nil), "POST", "/webhooks?authKey=k", payload, map[string]string{
				"X-Gitlab-Token": tt.token,
				"X-Gitlab-Event": "Push Hook",
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			require.Len(t, runner.triggers, tt.wantRuns)
			if tt.wantRuns > 0 {
				assert.Equal(t, model.WebhookSync{Homepage: "http://example.com/acme/demo", AuthKey: "k"}, runner.triggers[0])
			}
		})
	}
}

func TestWebhookEndpointBadPayload(t *testing.T) {
	runner := &fakeRunner{}
	w := serve(newTestServer(runner, nil), "POST", "/webhooks", "garbage", map[string]string{
		"X-Gitlab-Token": "hook-secret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, runner.triggers)
}

func TestHistoryEndpoint(t *testing.T) {
	entries := fakeHistory{"demo": {
		{Repository: "demo", Trigger: "full", Status: 200, Message: "ok"},
		{Repository: "demo", Trigger: "webhook", Status: 422, Message: "bad"},
	}}

	w := serve(newTestServer(&fakeRunner{}, entries), "GET", "/history/demo?limit=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got []journal.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "full", got[0].Trigger)

	w = serve(newTestServer(&fakeRunner{}, entries), "GET", "/history/other", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())

	w = serve(newTestServer(&fakeRunner{}, entries), "GET", "/history/demo?limit=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(newTestServer(&fakeRunner{}, nil), "GET", "/history/demo", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	w := serve(newTestServer(&fakeRunner{}, nil), "GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
