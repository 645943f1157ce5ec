package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgoodwin/ebay-listing-migrator/internal/ebay"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [production|sandbox]",
		Short: "Authorize an environment interactively",
		Long: "Run the browser consent flow for one environment and persist the\n" +
			"resulting refresh token, replacing any stored token. Use this for\n" +
			"first-time setup or after a stored refresh token has expired.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			env, err := parseEnvArg(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			stack := buildStack(cfg, env)
			if err := stack.Auth.ForceInteractive(c.Context()); err != nil {
				return fmt.Errorf("authorizing %s: %w", env, err)
			}

			logger.Info("environment authorized",
				"env", env.String(),
				"token_file", ebay.NewFileTokenStore(cfg.TokenDir, env).Path(),
			)

			// Prove the refresh token produces an access token.
			if _, err := stack.Auth.Token(context.Background()); err != nil {
				return fmt.Errorf("verifying %s token: %w", env, err)
			}

			fmt.Printf("Logged in to %s.\n", env)
			return nil
		},
	}
}
