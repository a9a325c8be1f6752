package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/agenthub/catalog/rediscache"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached catalog entries from Redis",
	Long:  `Delete the Redis cached catalog entries of a tenant, or of every tenant when --tenant is omitted.`,
	RunE:  runInvalidate,
}

func init() {
	invalidateCmd.Flags().StringP("tenant", "t", "", "Tenant id; empty clears all tenants")
}

func runInvalidate(cmd *cobra.Command, _ []string) error {
	tenantID, _ := cmd.Flags().GetString("tenant")

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, ok := rt.store.(*rediscache.Store); !ok {
		return errors.New("REDIS_URL is not set; nothing to invalidate")
	}

	hub, err := rt.hub()
	if err != nil {
		return err
	}
	if err := hub.Invalidate(ctx, tenantID); err != nil {
		return err
	}

	scope := tenantID
	if scope == "" {
		scope = "all tenants"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "invalidated catalog cache for %s\n", scope)
	return err
}
