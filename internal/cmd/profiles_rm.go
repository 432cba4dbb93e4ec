package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/metrics"
	"github.com/handlevet/handlevet/internal/output"
)

var (
	profilesRmYes    bool
	profilesRmDryRun bool
	profilesRmFormat string
)

var profilesRmCmd = &cobra.Command{
	Use:   "rm <profile-id>",
	Short: "Delete a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(profilesRmFormat)
		if err != nil {
			return err
		}
		if format != output.FormatJSON && format != output.FormatTable {
			return fmt.Errorf("unsupported output format: %s", format)
		}

		if !profilesRmYes && !profilesRmDryRun {
			return errors.New("rm requires --yes (or use --dry-run)")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		profile, err := db.GetProfile(cmd.Context(), strings.TrimSpace(args[0]))
		if err != nil {
			return err
		}

		if profilesRmDryRun {
			return writeRemoveResult(format, os.Stdout, profile, true)
		}

		err = db.DeleteProfile(cmd.Context(), profile.ID)
		metrics.RecordStoreOperation("delete_profile", err == nil)
		if err != nil {
			return err
		}

		return writeRemoveResult(format, os.Stdout, profile, false)
	},
}

func writeRemoveResult(format output.Format, w io.Writer, profile *core.Profile, dryRun bool) error {
	if format == output.FormatJSON {
		payload, err := json.MarshalIndent(map[string]any{
			"profile": profile,
			"deleted": !dryRun,
			"dry_run": dryRun,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(payload))
		return err
	}

	if dryRun {
		_, err := fmt.Fprintf(w, "Would delete profile %s (%s)\n", profile.ID, profile.Nickname)
		return err
	}
	_, err := fmt.Fprintf(w, "Deleted profile %s (%s)\n", profile.ID, profile.Nickname)
	return err
}

func init() {
	profilesRmCmd.Flags().BoolVar(&profilesRmYes, "yes", false, "Confirm destructive delete")
	profilesRmCmd.Flags().BoolVar(&profilesRmDryRun, "dry-run", false, "Show what would be deleted")
	profilesRmCmd.Flags().StringVar(&profilesRmFormat, "format", string(output.FormatTable), "Output format: table|json")
}
