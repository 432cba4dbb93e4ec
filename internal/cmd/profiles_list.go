package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	"github.com/handlevet/handlevet/internal/output"
)

var (
	profilesListFormat string
	profilesListOut    string
	profilesListOutDir string
)

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(profilesListFormat)
		if err != nil {
			return err
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

		profiles, err := db.ListProfiles(cmd.Context())
		if err != nil {
			return err
		}

		outPath := strings.TrimSpace(profilesListOut)
		outDir := strings.TrimSpace(profilesListOutDir)
		if outPath != "" && outDir != "" {
			return fmt.Errorf("--out and --out-dir are mutually exclusive")
		}

		if outDir != "" {
			outDir, err = ensureOutDir(outDir)
			if err != nil {
				return err
			}
			outPath = filepath.Join(outDir, fmt.Sprintf("profiles.list.%s", outputExtension(format)))
		}

		sink, err := openSink(outPath)
		if err != nil {
			return err
		}
		defer func() { _ = sink.close() }()

		if len(profiles) == 0 && format == output.FormatTable {
			lines := []string{"Profiles", "", "(no stored profiles)"}
			_, _ = fmt.Fprint(sink.writer, ascii.DrawBox(strings.Join(lines, "\n"), 0))
			return nil
		}

		formatter := output.NewFormatter(format)
		rendered, err := formatter.FormatProfiles(profiles)
		if err != nil {
			return err
		}
		if rendered != "" {
			_, _ = fmt.Fprintln(sink.writer, rendered)
		}
		return nil
	},
}

func init() {
	profilesListCmd.Flags().StringVar(&profilesListFormat, "format", "table", "Output format: table, json, markdown")
	profilesListCmd.Flags().StringVar(&profilesListOut, "out", "", "Write output to a file (default stdout)")
	profilesListCmd.Flags().StringVar(&profilesListOutDir, "out-dir", "", "Write output to a directory")
}
