package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pocket",
		Short:         "Pocket CLI: chat with the Pocket desktop companion from the terminal",
		Long:          "pocket talks to the Pocket desktop companion service over HTTP: send chat and voice messages, browse history, open projects, and read/write files, with session handling and reconnection taken care of.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentFlags().String("host", "", "Companion service host (defaults to config)")
	rootCmd.PersistentFlags().Int("port", 0, "Companion service port (defaults to config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(app),
		newChatCmd(app),
		newProjectsCmd(app),
		newFilesCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}

// connectClient establishes the connection for a command, honoring --host and
// --port overrides.
func connectClient(cmd *cobra.Command, app *app) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")

	if !app.client.Connect(cmd.Context(), host, port) {
		state := app.client.State()
		if state.LastError != "" {
			return errConnect(state.LastError)
		}
		return errConnect("connection refused")
	}

	return nil
}
