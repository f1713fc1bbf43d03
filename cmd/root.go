package cmd

import (
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redbadger/gitlab-sync/config"
	"github.com/redbadger/gitlab-sync/constants"
	"github.com/redbadger/gitlab-sync/journal"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "gitlab-sync",
	Short: "Deploy repository snapshots from GitLab onto local directories",
	Long: `
	gitlab-sync runs in two modes:

	1. as an agent (gitlab-sync serve) answering sync requests and GitLab push webhooks
	2. as a cli command (gitlab-sync sync) run by hand or from a CI/CD pipeline

	Every sync downloads the archive of the configured branch, extracts it and
	copies its content onto the directory mapped to the repository.
	`,
	Version: constants.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gitlab-sync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show every step of a sync")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".gitlab-sync")
	}

	viper.AutomaticEnv()
	viper.BindEnv("api.token", constants.TokenEnvVar)
	viper.BindEnv("api.password", constants.PasswordEnvVar)
	viper.BindEnv("deployAuthKey", constants.AuthKeyEnvVar)
	viper.BindEnv("webhookSecret", constants.SecretEnvVar)

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	return cfg
}

// openJournal returns nil when no journal is configured or it cannot be
// opened; syncs then run unrecorded.
func openJournal(cfg *config.Config) *journal.Journal {
	if cfg.Journal == "" {
		return nil
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		log.WithError(err).Warn("syncs will not be recorded")
		return nil
	}
	return j
}
