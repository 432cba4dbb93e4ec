package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long:  "Print the merged configuration after defaults, config file, and environment variables are applied.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Never print credentials.
		redacted := *cfg
		if redacted.Store.AuthToken != "" {
			redacted.Store.AuthToken = "***"
		}

		payload, err := yaml.Marshal(redacted)
		if err != nil {
			return err
		}
		fmt.Print(string(payload))
		return nil
	},
}
