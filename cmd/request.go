package cmd

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redbadger/gitlab-sync/deployer"
	"github.com/redbadger/gitlab-sync/model"
)

var (
	repo    string
	team    string
	authKey string
	clean   bool
)

var requestCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"request"},
	Short:   "Deploy the configured branch of a repository",
	Long: `
Deploy the configured branch of a repository:

1. downloads the repository archive from the hosting service
2. extracts it into the staging directory
3. optionally removes the previously deployed files (--clean, needs --key)
4. copies the extracted files onto the directory mapped to the repository
	`,
	Example: `gitlab-sync sync --repo=website --team=acme --key=$DEPLOY_AUTH_KEY --clean`,
	Run: func(cmd *cobra.Command, args []string) {
		trigger := model.FullSync{DeploymentRequest: model.DeploymentRequest{
			Repository: repo,
			Team:       team,
			AuthKey:    authKey,
			Clean:      clean,
		}}
		os.Exit(runTrigger(trigger))
	},
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry failed synchronizations",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runTrigger(model.Retry{}))
	},
}

// runTrigger runs trigger with the transcript on stdout and returns the exit
// code.
func runTrigger(trigger model.Trigger) int {
	cfg := loadConfig()

	var rec deployer.Recorder
	if j := openJournal(cfg); j != nil {
		defer j.Close()
		rec = j
	}

	d, err := deployer.NewFromConfig(context.Background(), cfg, rec)
	if err != nil {
		log.WithError(err).Error("cannot create deployer")
		return 1
	}
	if _, err := d.Run(context.Background(), trigger, os.Stdout); err != nil {
		log.WithField("status", deployer.StatusCode(err)).Debug("sync failed")
		return 1
	}
	return 0
}

func init() {
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(retryCmd)

	requestCmd.Flags().StringVar(&repo, "repo", "", "Repository name, as listed in the configuration")
	requestCmd.MarkFlagRequired("repo")

	requestCmd.Flags().StringVar(&team, "team", "", "Namespace owning the repository (defaults to api.namespace)")

	requestCmd.Flags().StringVar(&authKey, "key", "", "Deploy auth key")

	requestCmd.Flags().BoolVar(&clean, "clean", false, "Remove the previously deployed files first")
}
