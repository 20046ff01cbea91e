package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mlcortes/wburn/internal/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	serverURL := cfg.Server.BaseURL
	secret := cfg.Server.SharedSecret
	fallback := strconv.FormatFloat(cfg.Budget.FallbackWeekly, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Expense server URL").
				Placeholder("https://spend.example.net").
				Value(&serverURL).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || u.Scheme == "" || u.Host == "" {
						return errors.New("enter a full http(s) URL")
					}
					return nil
				}),
			huh.NewInput().
				Title("Shared signing secret").
				Description("The symmetric key your server verifies X-Signature with.").
				EchoMode(huh.EchoModePassword).
				Value(&secret).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("the secret must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Fallback weekly budget").
				Description("Used until the first successful budget fetch.").
				Value(&fallback).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil || v <= 0 {
						return errors.New("enter a positive number")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.BaseURL = strings.TrimSpace(serverURL)
	cfg.Server.SharedSecret = strings.TrimSpace(secret)
	cfg.Budget.FallbackWeekly, _ = strconv.ParseFloat(fallback, 64)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `wburn` to see this week's spending.")
	return nil
}
