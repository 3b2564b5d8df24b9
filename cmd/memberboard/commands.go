package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/memberboard/memberboard/internal/config"
	"github.com/memberboard/memberboard/internal/summary"
)

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and submit member profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a member's stored profile as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get("/profiles/" + args[0])
		if err != nil {
			return err
		}

		var profile any
		if err := decodeJSON(resp, &profile); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	},
}

var profileSubmitCmd = &cobra.Command{
	Use:   "submit <user-id>",
	Short: "Submit a profile form for a member",
	Long: `Submit a profile form for a member, creating their card on the board
or replacing the existing one.

Example:
  memberboard profile submit u123 --name "Ana" --role "Backend dev" --interests "Go, distributed systems"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		role, _ := cmd.Flags().GetString("role")
		institution, _ := cmd.Flags().GetString("institution")
		interests, _ := cmd.Flags().GetString("interests")
		details, _ := cmd.Flags().GetString("details")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := map[string]any{
			"user_id": args[0],
			"fields": summary.FormFields{
				Name:        name,
				Role:        role,
				Institution: institution,
				Interests:   interests,
				Details:     details,
			},
		}
		resp, err := client.post("/profiles", req)
		if err != nil {
			return err
		}

		var result struct {
			ArtifactID   string `json:"artifact_id"`
			Created      bool   `json:"created"`
			UsedFallback bool   `json:"used_fallback"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		verb := "updated"
		if result.Created {
			verb = "created"
		}
		printSuccess("Profile %s, card %s", verb, result.ArtifactID)
		if result.UsedFallback {
			printWarning("summary used fallback content (generator unavailable or incomplete)")
		}
		return nil
	},
}

func init() {
	profileSubmitCmd.Flags().String("name", "", "member name")
	profileSubmitCmd.Flags().String("role", "", "role or occupation")
	profileSubmitCmd.Flags().String("institution", "", "institution or company")
	profileSubmitCmd.Flags().String("interests", "", "interests")
	profileSubmitCmd.Flags().String("details", "", "free-form details")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSubmitCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, e := range config.Entries(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, e.Key), e.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
