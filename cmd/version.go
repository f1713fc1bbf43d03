package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/redbadger/gitlab-sync/constants"
)

var short bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of gitlab-sync and the platform it was built for",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), short)
	},
}

func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, constants.Version)
		return
	}
	fmt.Fprintf(w, "gitlab-sync version %s\n", constants.Version)
	fmt.Fprintf(w, "  user agent: %s\n", constants.UserAgent)
	fmt.Fprintf(w, "  built with: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&short, "short", false, "Print the version number only")
}
