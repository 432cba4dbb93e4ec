package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/handlevet/handlevet/internal/core"
	"github.com/handlevet/handlevet/internal/output"
)

var reservedFormat string

var reservedCmd = &cobra.Command{
	Use:   "reserved",
	Short: "List reserved nicknames",
	Long:  "List the nicknames that can never be claimed, including any configured extras.",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(reservedFormat)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		formatter := output.NewFormatter(format)
		rendered, err := formatter.FormatReserved(core.EffectiveReserved(cfg.Validator.ReservedExtra))
		if err != nil {
			return err
		}
		if rendered != "" {
			fmt.Println(rendered)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reservedCmd)

	reservedCmd.Flags().StringVar(&reservedFormat, "format", "table", "Output format: table, json, markdown")
}
