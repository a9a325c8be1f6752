package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the agents enabled for a tenant",
	RunE:  runAgents,
}

func init() {
	agentsCmd.Flags().StringP("tenant", "t", "", "Tenant id (required)")
	_ = agentsCmd.MarkFlagRequired("tenant")
}

func runAgents(cmd *cobra.Command, _ []string) error {
	tenantID, _ := cmd.Flags().GetString("tenant")

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	agents, err := rt.store.EnabledAgents(ctx, tenantID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tHANDLER\tMODEL\tDESCRIPTION")
	for _, a := range agents {
		modelID := a.ModelID
		if modelID == "" {
			modelID = "(tenant default)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, a.HandlerID, modelID, a.Description)
	}
	return w.Flush()
}
