// Package cmd implements the listing-migrator CLI commands.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgoodwin/ebay-listing-migrator/internal/config"
	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
	"github.com/rgoodwin/ebay-listing-migrator/internal/migrate"
	"github.com/rgoodwin/ebay-listing-migrator/internal/notify"
	"github.com/rgoodwin/ebay-listing-migrator/pkg/logger"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "listing-migrator",
	Short: "Copy eBay listings between production and sandbox",
	Long: "listing-migrator automates eBay seller account workflows: it manages\n" +
		"OAuth tokens for the production and sandbox environments, inspects and\n" +
		"edits offers, and recreates production listings in the sandbox for\n" +
		"safe end-to-end testing.",
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "ebay-config.yaml", "config file path")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(offersCmd())
	rootCmd.AddCommand(policiesCmd())
	rootCmd.AddCommand(migrateCmd())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.New(level, cfg.Logging.Format)
}

// envCredentials returns the credentials block matching the environment.
func envCredentials(cfg *config.Config, env ebay.Environment) config.EnvCredentials {
	if env == ebay.Production {
		return cfg.Production
	}
	return cfg.Sandbox
}

// buildStack wires the client graph for one environment using the shared
// config settings and the terminal code prompter.
func buildStack(cfg *config.Config, env ebay.Environment) *migrate.Stack {
	return migrate.BuildStack(env, envCredentials(cfg, env), migrate.StackOptions{
		TokenDir:    cfg.TokenDir,
		Marketplace: cfg.Migration.Marketplace,
		RateLimit:   cfg.RateLimit,
		Prompt:      terminalPrompt,
	})
}

// terminalPrompt walks the operator through the browser consent flow and
// reads the authorization code from stdin.
func terminalPrompt(authorizationURL string) (string, error) {
	fmt.Println("Open the following URL in a browser and sign in:")
	fmt.Println()
	fmt.Println("  " + authorizationURL)
	fmt.Println()
	fmt.Print("Paste the authorization code from the redirect URL: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading authorization code: %w", err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("empty authorization code")
	}
	return code, nil
}

func newNotifier(cfg *config.Config, logger *log.Logger) notify.Notifier {
	if cfg.Notifications.Discord.Enabled {
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL)
	}
	return notify.NewNoOpNotifier(logger)
}

func parseEnvArg(s string) (ebay.Environment, error) {
	env, err := ebay.ParseEnvironment(s)
	if err != nil {
		return "", fmt.Errorf("%w (expected production or sandbox)", err)
	}
	return env, nil
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
