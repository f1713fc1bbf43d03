package agent

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/deployer"
	"github.com/redbadger/gitlab-sync/journal"
	"github.com/redbadger/gitlab-sync/model"
)

// Runner executes sync triggers.
type Runner interface {
	Run(ctx context.Context, trigger model.Trigger, out io.Writer) (*deployer.Result, error)
}

// Historian reads past sync outcomes.
type Historian interface {
	History(repo string, limit int) ([]journal.Entry, error)
}

// Server exposes the sync endpoints over HTTP.
type Server struct {
	Listen  string
	Runner  Runner
	Journal Historian
	// Secret is compared with the X-Gitlab-Token header of webhooks
	Secret   string
	HookPath string
	Negroni  *negroni.Negroni
}

// NewServer builds the router for cfg. j may be nil, in which case the
// history endpoint answers 404.
func NewServer(cfg *config.Config, runner Runner, j Historian) *Server {
	s := &Server{
		Listen:   cfg.Listen,
		Runner:   runner,
		Journal:  j,
		Secret:   cfg.WebhookSecret,
		HookPath: cfg.HookPath,
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", healthz).Methods("GET")
	router.HandleFunc("/sync", s.handleSync).Methods("GET", "POST")
	if s.HookPath != "" {
		router.HandleFunc(s.HookPath, s.handleWebhook).Methods("POST")
	}
	router.HandleFunc("/history/{repo}", s.handleHistory).Methods("GET")

	n := negroni.New(&negroni.Recovery{
		Logger:     stdlog.New(os.Stdout, "", stdlog.LstdFlags),
		PrintStack: false,
		StackAll:   false,
		StackSize:  1024 * 8,
	})
	n.UseHandler(router)
	s.Negroni = n
	return s
}

// Start serves until SIGINT or SIGTERM, then drains connections.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	server := &http.Server{Addr: s.Listen, Handler: s.Negroni}
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	log.WithFields(log.Fields{
		"listen":   s.Listen,
		"hookPath": s.HookPath,
	}).Info("gitlab-sync agent started")

	select {
	case err := <-errs:
		return fmt.Errorf("cannot listen: %v", err)
	case <-stop:
	}

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("while shutting down: %v", err)
	}
	return nil
}
