package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	apperrors "github.com/handlevet/handlevet/internal/errors"
	"github.com/handlevet/handlevet/internal/metrics"
	"github.com/handlevet/handlevet/internal/output"
)

var (
	claimYes    bool
	claimDryRun bool
)

var claimCmd = &cobra.Command{
	Use:   "claim <profile-id> <nickname>",
	Short: "Claim a nickname for a profile",
	Long: `Claim a nickname for an existing profile.

The store's uniqueness constraint decides races: if another profile takes
the nickname first, the claim fails with a duplicate error and must not be
retried. Cached availability answers for both the old and the new nickname
are invalidated on success.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		profileID, nickname := args[0], args[1]

		if !claimYes && !claimDryRun {
			return errors.New("claim requires --yes (or use --dry-run)")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		pipe := buildPipeline(cfg, db, true, nil)

		if claimDryRun {
			// Report what a claim would find without writing anything. The
			// answer can still go stale before a real claim; only the store
			// write is authoritative.
			current, err := db.GetProfile(ctx, strings.TrimSpace(profileID))
			if err != nil {
				return err
			}
			result := pipe.Service.Check(ctx, nickname, current.Nickname)
			rendered, err := output.FormatResult(output.FormatTable, &result)
			if err != nil {
				return err
			}
			if rendered != "" {
				fmt.Println(rendered)
			}
			return nil
		}

		profile, err := pipe.Service.UpdateNickname(ctx, profileID, nickname)
		metrics.RecordStoreOperation("update_nickname", err == nil)
		if err != nil {
			metrics.RecordError(string(apperrors.KindOf(err)))
			return err
		}

		lines := []string{
			"Nickname claimed",
			"",
			fmt.Sprintf("profile: %s", profile.ID),
			fmt.Sprintf("nickname: %s", profile.Nickname),
			fmt.Sprintf("canonical: %s", profile.Canonical),
		}
		fmt.Print(ascii.DrawBox(strings.Join(lines, "\n"), 0))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(claimCmd)

	claimCmd.Flags().BoolVar(&claimYes, "yes", false, "Confirm the claim")
	claimCmd.Flags().BoolVar(&claimDryRun, "dry-run", false, "Check availability without claiming")
}
