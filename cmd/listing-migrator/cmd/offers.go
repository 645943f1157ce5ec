package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/rgoodwin/ebay-listing-migrator/pkg/types"
)

func offersCmd() *cobra.Command {
	offersRoot := &cobra.Command{
		Use:   "offers",
		Short: "Inspect and edit offers in one environment",
	}

	offersRoot.AddCommand(
		offersListCmd(),
		offersGetCmd(),
		offersCreateCmd(),
		offersUpdateCmd(),
		offersDeleteCmd(),
	)

	return offersRoot
}

func offersListCmd() *cobra.Command {
	var (
		envName  string
		pageSize int
		page     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published offers",
		Example: `  # List published sandbox offers
  listing-migrator offers list --env sandbox

  # Page through production offers
  listing-migrator offers list --env production --page-size 25 --page 2`,
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
			offers, err := stack.Offers.GetActiveOffers(c.Context(), pageSize, page)
			if err != nil {
				return fmt.Errorf("listing offers: %w", err)
			}

			if jsonOutput() {
				return outputJSON(offers)
			}
			return printOfferTable(offers)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "sandbox", "environment (production, sandbox)")
	cmd.Flags().IntVar(&pageSize, "page-size", 10, "listings per page")
	cmd.Flags().IntVar(&page, "page", 1, "page number")

	return cmd
}

func offersGetCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "get <listing-id>",
		Short: "Show one offer by listing ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			env, err := parseEnvArg(envName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stack := buildStack(cfg, env)
			offer, err := stack.Offers.GetOffer(c.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetching offer: %w", err)
			}
			if offer == nil {
				return fmt.Errorf("no offer found for listing %s", args[0])
			}

			if jsonOutput() {
				return outputJSON(offer)
			}
			return printOfferDetail(offer)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "sandbox", "environment (production, sandbox)")

	return cmd
}

func offersCreateCmd() *cobra.Command {
	var (
		envName string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create and publish an offer from a JSON file",
		Long: "Read an offer definition from a JSON file, fill in any missing\n" +
			"policy IDs with the environment's resolved policies, and publish it.",
		RunE: func(c *cobra.Command, _ []string) error {
			env, err := parseEnvArg(envName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			data, err := os.ReadFile(file) //nolint:gosec // offer path from trusted CLI flag
			if err != nil {
				return fmt.Errorf("reading offer file: %w", err)
			}

			var offer domain.Offer
			if err := json.Unmarshal(data, &offer); err != nil {
				return fmt.Errorf("parsing offer file: %w", err)
			}

			stack := buildStack(cfg, env)

			if !offer.Policies().Complete() {
				triple, err := stack.Policies.Resolve(c.Context())
				if err != nil {
					return err
				}
				offer.ApplyPolicies(triple)
			}

			listingID, err := stack.Offers.CreateOffer(c.Context(), &offer)
			if err != nil {
				return fmt.Errorf("creating offer: %w", err)
			}

			logger.Info("offer published", "env", env.String(), "listing_id", listingID)
			fmt.Println(listingID)
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "sandbox", "environment (production, sandbox)")
	cmd.Flags().StringVar(&file, "file", "", "offer JSON file")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))

	return cmd
}

func offersUpdateCmd() *cobra.Command {
	var (
		envName string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "update <listing-id>",
		Short: "Update a published offer from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			env, err := parseEnvArg(envName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(file) //nolint:gosec // offer path from trusted CLI flag
			if err != nil {
				return fmt.Errorf("reading offer file: %w", err)
			}

			var offer domain.Offer
			if err := json.Unmarshal(data, &offer); err != nil {
				return fmt.Errorf("parsing offer file: %w", err)
			}

			stack := buildStack(cfg, env)
			updated, err := stack.Offers.UpdateOffer(c.Context(), args[0], &offer)
			if err != nil {
				return fmt.Errorf("updating offer: %w", err)
			}
			if !updated {
				return fmt.Errorf("no offer found for listing %s", args[0])
			}

			fmt.Printf("Updated listing %s.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "sandbox", "environment (production, sandbox)")
	cmd.Flags().StringVar(&file, "file", "", "offer JSON file")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))

	return cmd
}

func offersDeleteCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "delete <listing-id>",
		Short: "Delete an offer and its inventory item",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			env, err := parseEnvArg(envName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			stack := buildStack(cfg, env)
			deleted, err := stack.Offers.DeleteOffer(c.Context(), args[0])
			if err != nil {
				return fmt.Errorf("deleting offer: %w", err)
			}
			if !deleted {
				fmt.Printf("No offer found for listing %s.\n", args[0])
				return nil
			}

			fmt.Printf("Deleted listing %s.\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&envName, "env", "sandbox", "environment (production, sandbox)")

	return cmd
}
