package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/tabula/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or generate the configuration",
	Long: `Without flags, config prints the resolved configuration as YAML.
With --init it writes a default configuration file instead.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().Bool("init", false, "write a default config file")
	configCmd.Flags().String("file", "tabula.yaml", "target path for --init")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	initFlag, _ := cmd.Flags().GetBool("init")
	if initFlag {
		target, _ := cmd.Flags().GetString("file")
		if err := config.GenerateDefaultConfigFile(target); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
		return nil
	}

	cfg := GetConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", used)
	}
	return nil
}
