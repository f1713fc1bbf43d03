package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/redbadger/gitlab-sync/deployer"
	"github.com/redbadger/gitlab-sync/journal"
	"github.com/redbadger/gitlab-sync/model"
	"github.com/redbadger/gitlab-sync/request"
)

const defaultHistory = 20

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status": "ok"}`))
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	trigger, err := request.Manual(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.run(w, r, trigger)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	trigger, err := request.Webhook(r, s.Secret)
	switch {
	case errors.Is(err, request.ErrSecret):
		log.WithField("remote", r.RemoteAddr).Warn("webhook with a wrong secret")
		http.Error(w, "Unauthorized.", http.StatusUnauthorized)
		return
	case err != nil:
		log.WithError(err).Info("ignoring webhook")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.run(w, r, trigger)
}

// run executes trigger to completion even when the client goes away and
// answers with the transcript.
func (s *Server) run(w http.ResponseWriter, r *http.Request, trigger model.Trigger) {
	var out bytes.Buffer
	ctx := context.WithoutCancel(r.Context())
	res, err := s.Runner.Run(ctx, trigger, &out)
	status := deployer.StatusCode(err)

	fields := log.Fields{
		"trigger": trigger.Kind(),
		"status":  status,
	}
	if res != nil {
		fields["repository"] = res.Repository
		fields["files"] = res.Files
		fields["warnings"] = len(res.Warnings)
	}
	log.WithFields(fields).Info("sync finished")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write(out.Bytes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		http.Error(w, "no journal configured", http.StatusNotFound)
		return
	}
	limit := defaultHistory
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.Journal.History(mux.Vars(r)["repo"], limit)
	if err != nil {
		log.WithError(err).Error("reading journal")
		http.Error(w, "cannot read journal", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		log.WithError(err).Warn("writing history")
	}
}
