package cmd

import (
	"fmt"

	"golang-kvconfig/internal/pkg/version"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and git info",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), info.Short())
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Tag: %s\nBranch: %s\nCommit: %s\nDirty: %v\nGo: %s\n",
			info.Tag, info.Branch, info.Commit, info.Dirty, info.GoVersion)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only tag and commit")
	rootCmd.AddCommand(versionCmd)
}
