package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	statusadapter "github.com/pocketcode/pocket-cli/internal/adapters/render/status"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var probeOnly bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connection, session, and current project status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			// The health probe is always attempted, connected or not.
			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			healthy := probeTarget(cmd, app, host, port)

			if !probeOnly && healthy {
				if err := connectClient(cmd, app); err != nil {
					app.logger.Debug("status connect failed")
				}
			}

			report := statusadapter.Report{
				State:   app.client.State(),
				Healthy: healthy,
			}
			if report.State.Connected() {
				report.Session = app.client.Session(ctx)
				if project, err := app.client.CurrentProject(ctx); err == nil {
					report.Project = project
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			rendered, err := app.statusRenderer(report, statusadapter.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&probeOnly, "probe", false, "Only probe service health, do not connect")

	return cmd
}

// probeTarget points the client at the requested target and runs the
// liveness probe.
func probeTarget(cmd *cobra.Command, app *app, host string, port int) bool {
	if host != "" || port > 0 {
		// Connect applies the same override; this just makes the probe hit
		// the right target when it runs first.
		state := app.client.State()
		if host == "" {
			host = state.Host
		}
		if port <= 0 {
			port = state.Port
		}
		if err := app.client.SetTarget(host, port); err != nil {
			return false
		}
	}

	return app.client.Health(cmd.Context())
}
