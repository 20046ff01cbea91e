package cmd

import (
	"fmt"

	"github.com/mlcortes/wburn/internal/cli"
	"github.com/mlcortes/wburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	if cfg.Server.BaseURL != "" {
		fmt.Printf("    URL:    %s\n", cfg.Server.BaseURL)
	} else {
		fmt.Println("    URL:    not configured")
	}
	if cfg.Server.SharedSecret != "" {
		fmt.Printf("    Secret: %s\n", maskSecret(cfg.Server.SharedSecret))
	} else {
		fmt.Println("    Secret: not configured")
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Fallback weekly: %s\n", cli.FormatMoney(cfg.Appearance.Currency, cfg.Budget.FallbackWeekly))
	fmt.Println()

	fmt.Println("  Run `wburn setup` to reconfigure.")
	return nil
}

func maskSecret(key string) string {
	if len(key) > 8 {
		return key[:4] + "..." + key[len(key)-2:]
	}
	return "****"
}
