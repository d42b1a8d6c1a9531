package commands

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/benvon/board-insights/internal/app"
	"github.com/benvon/board-insights/internal/gateway"
	"github.com/spf13/cobra"
)

// NewInvokeCmd creates the invoke command
func NewInvokeCmd() *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:       "invoke <compress|analysis>",
		Short:     "Run one event through a handler",
		Long:      "Replay a gateway or direct invocation event from a JSON or YAML file and print the proxy response",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"compress", "analysis"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if eventPath == "" {
				return fmt.Errorf("--event is required")
			}
			event, err := LoadEvent(eventPath)
			if err != nil {
				return err
			}

			debug, _ := cmd.Flags().GetBool("debug")
			a, shutdown, err := app.Bootstrap(cmd.Context(), "invoke", debug)
			if err != nil {
				return err
			}
			defer shutdown()

			var handler gateway.Handler
			switch args[0] {
			case "compress":
				handler = a.Compress
			case "analysis":
				handler = a.Analysis
			default:
				return fmt.Errorf("unknown handler %q (want compress or analysis)", args[0])
			}

			resp, err := handler.Handle(cmd.Context(), event)
			if err != nil {
				return fmt.Errorf("handler failed: %w", err)
			}
			return printResponse(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "", "Path to the event file (.json, .yaml or .yml)")

	return cmd
}

// printResponse writes the status line and the indented body
func printResponse(cmd *cobra.Command, resp gateway.Response) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status: %d\n", resp.StatusCode)
	if resp.Body == "" {
		return nil
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(resp.Body), "", "  "); err != nil {
		fmt.Fprintln(out, resp.Body)
		return nil
	}
	fmt.Fprintln(out, pretty.String())
	return nil
}
