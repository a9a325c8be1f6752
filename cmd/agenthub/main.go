package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agenthub",
	Short: "AgentHub CLI - route messages through the multi-tenant agent hub",
	Long: `agenthub routes a tenant's message to the matching domain agent using the
catalog stored in the configured SQLite database.

Settings are read from the environment and an optional .env file
(DATABASE_PATH, FERNET_KEY, REDIS_URL, VECTOR_STORE_URL, ...).

Examples:
  # Route a message for a tenant
  agenthub route --tenant acme --token $JWT "What is the debt for tax code 0123456789012?"

  # List the agents enabled for a tenant
  agenthub agents --tenant acme

  # Seal a provider API key for storage in a tenant binding
  agenthub encrypt sk-...`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(invalidateCmd)

	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Env files loaded before parsing settings")
}
