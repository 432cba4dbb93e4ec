package cmd

import (
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/metrics"
)

var profilesAddDisplayName string

var profilesAddCmd = &cobra.Command{
	Use:   "add <nickname>",
	Short: "Create a profile with the given nickname",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nickname := strings.TrimSpace(args[0])

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Fail fast on invalid or reserved nicknames before touching the store.
		if err := core.ValidateNickname(nickname, cfg.Validator.ReservedExtra); err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		profile, err := db.CreateProfile(cmd.Context(), nickname, strings.TrimSpace(profilesAddDisplayName))
		metrics.RecordStoreOperation("create_profile", err == nil)
		if err != nil {
			return err
		}

		lines := []string{
			"Profile created",
			"",
			fmt.Sprintf("id: %s", profile.ID),
			fmt.Sprintf("nickname: %s", profile.Nickname),
			fmt.Sprintf("canonical: %s", profile.Canonical),
		}
		fmt.Print(ascii.DrawBox(strings.Join(lines, "\n"), 0))
		return nil
	},
}

func init() {
	profilesAddCmd.Flags().StringVar(&profilesAddDisplayName, "display-name", "", "Optional display name")
}
