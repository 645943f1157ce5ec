package cmd

import (
	"github.com/spf13/cobra"
)

func policiesCmd() *cobra.Command {
	policiesRoot := &cobra.Command{
		Use:   "policies",
		Short: "Manage account policies in one environment",
	}

	policiesRoot.AddCommand(policiesResolveCmd())

	return policiesRoot
}

func policiesResolveCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the environment's policy set, creating defaults if needed",
		Long: "Look up the environment's shipping, payment, and return policies.\n" +
			"When a policy type has none, a default is created so the environment\n" +
			"can publish listings.",
		RunE: func(c *cobra.Command, _ []string) error {
			env, err := parseEnvArg(envName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stack := buildStack(cfg, env)
			triple, err := stack.Policies.Resolve(c.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(triple)
			}
			return printPolicyTriple(&triple)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "sandbox", "environment (production, sandbox)")

	return cmd
}
