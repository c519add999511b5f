package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

func newWatchCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stay connected and stream session and project updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()

			err := runConnectSpinner(ctx, cmd.ErrOrStderr(), "Connecting to companion...", func(ctx context.Context) error {
				return connectClient(cmd, app)
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "watching as %s, ctrl-c to stop\n", app.client.SessionManager().Describe())

			app.client.OnConnectionChange(func(connected bool) {
				if connected {
					fmt.Fprintln(out, "-- connected")
				} else {
					fmt.Fprintln(out, "-- disconnected")
				}
			})

			unsubscribeSession := app.client.OnSessionUpdate(func(session *domain.SessionInfo) {
				fmt.Fprintf(out, "session %s last active %s\n", session.ID, session.LastActivity.Format("15:04:05"))
			})
			defer unsubscribeSession()

			unsubscribeProject := app.client.OnProjectUpdate(func(project *domain.ProjectDetails) {
				if project == nil {
					return
				}
				fmt.Fprintf(out, "project %s (%s)\n", project.Name, project.Path)
			})
			defer unsubscribeProject()

			<-ctx.Done()
			app.client.Disconnect()
			return nil
		},
	}
}
