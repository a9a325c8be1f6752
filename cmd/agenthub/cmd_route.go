package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agenthub/core"
)

var routeCmd = &cobra.Command{
	Use:   "route [message]",
	Short: "Route a message and print the response envelope",
	Long:  `Classify the message, dispatch it to the matching domain agent of the tenant and print the resulting envelope as JSON.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoute,
}

func init() {
	routeCmd.Flags().StringP("tenant", "t", "", "Tenant id (required)")
	routeCmd.Flags().String("token", "", "Caller bearer token forwarded to capabilities")
	routeCmd.Flags().Bool("compact", false, "Print the envelope without indentation")
	routeCmd.Flags().Bool("metrics", false, "Print the recorded routing metrics to stderr")
	_ = routeCmd.MarkFlagRequired("tenant")
}

func runRoute(cmd *cobra.Command, args []string) error {
	tenantID, _ := cmd.Flags().GetString("tenant")
	token, _ := cmd.Flags().GetString("token")
	compact, _ := cmd.Flags().GetBool("compact")
	showMetrics, _ := cmd.Flags().GetBool("metrics")

	message := strings.TrimSpace(strings.Join(args, " "))
	if message == "" {
		return errors.New("message must not be empty")
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	hub, err := rt.hub()
	if err != nil {
		return err
	}

	env := hub.Route(ctx, core.TenantContext{TenantID: tenantID, Credential: token}, message)

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(env); err != nil {
		return err
	}

	if showMetrics {
		return rt.writeMetrics(cmd.ErrOrStderr())
	}
	return nil
}
