package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redbadger/gitlab-sync/journal"
)

var limit int

var historyCmd = &cobra.Command{
	Use:   "history [repository]",
	Short: "Show past synchronizations recorded in the journal",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.Journal == "" {
			log.Fatal("no journal configured")
		}
		j, err := journal.OpenReadOnly(cfg.Journal)
		if errors.Is(err, journal.ErrLocked) {
			log.WithError(err).Fatal("the agent holds the journal, use its /history/{repo} endpoint instead")
		}
		if err != nil {
			log.WithError(err).Fatal("cannot open journal")
		}
		defer j.Close()

		repos := args
		if len(repos) == 0 {
			if repos, err = j.Repositories(); err != nil {
				log.WithError(err).Fatal("reading journal")
			}
		}
		for _, r := range repos {
			entries, err := j.History(r, limit)
			if err != nil {
				log.WithError(err).WithField("repository", r).Fatal("reading journal")
			}
			fmt.Printf("%s:\n%s\n", r, journal.Format(entries))
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of entries per repository, 0 for all")
}
