package cmd

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redbadger/gitlab-sync/agent"
	"github.com/redbadger/gitlab-sync/deployer"
)

var agentCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"agent"},
	Short:   "Run gitlab-sync in agent mode",
	Long: `
	1.  listens for sync requests on /sync and GitLab push webhooks
	2.  downloads the archive of the configured branch
	3.  extracts it into the staging directory
	4.  copies the extracted files onto the mapped directory
	5.  answers with the transcript of the sync
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var (
			rec  deployer.Recorder
			hist agent.Historian
		)
		if j := openJournal(cfg); j != nil {
			defer j.Close()
			rec, hist = j, j
		}

		d, err := deployer.NewFromConfig(context.Background(), cfg, rec)
		if err != nil {
			log.WithError(err).Fatal("cannot create deployer")
		}
		if err := agent.NewServer(cfg, d, hist).Start(); err != nil {
			log.WithError(err).Error("agent stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.Flags().String("listen", ":3016", "Address to listen on")
	viper.BindPFlag("listen", agentCmd.Flags().Lookup("listen"))
}
