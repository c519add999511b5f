package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newFilesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Read and write files in the open project",
	}

	cmd.AddCommand(newFilesReadCmd(app), newFilesWriteCmd(app))

	return cmd
}

func newFilesReadCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <path>",
		Short: "Print a file from the companion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			file, err := app.client.ReadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), file.Content)
			return err
		},
	}
}

func newFilesWriteCmd(app *app) *cobra.Command {
	var content string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "write <path>",
		Short: "Write a file on the companion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if content == "" && fromFile == "" {
				return fmt.Errorf("one of --content or --from is required")
			}
			if fromFile != "" {
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read local file: %w", err)
				}
				content = string(data)
			}

			if err := connectClient(cmd, app); err != nil {
				return err
			}

			if err := app.client.WriteFile(cmd.Context(), args[0], content); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[0])
			return err
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Literal file content")
	cmd.Flags().StringVar(&fromFile, "from", "", "Local file to upload")

	return cmd
}
