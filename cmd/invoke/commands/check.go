package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/board-insights/internal/app"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check configuration and upstream reachability",
		Long:  "Verify required environment variables and probe the completion API, auth service and summary store",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			a, shutdown, err := app.Bootstrap(cmd.Context(), "invoke", debug)
			if err != nil {
				return err
			}
			defer shutdown()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := a.Check(ctx); err != nil {
				return fmt.Errorf("check failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is complete and all upstream services are reachable")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Overall timeout for the upstream probes")

	return cmd
}
