package cmd

import "github.com/spf13/cobra"

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage stored profiles",
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesAddCmd)
	profilesCmd.AddCommand(profilesRmCmd)
	rootCmd.AddCommand(profilesCmd)
}
