package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pocketcode/pocket-cli/internal/domain"
)

func newProjectsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List and open projects on the companion",
	}

	cmd.AddCommand(
		newProjectsListCmd(app),
		newProjectsOpenCmd(app),
		newProjectsCurrentCmd(app),
	)

	return cmd
}

func newProjectsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			projects, err := app.client.Projects(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				_, err := fmt.Fprintln(out, "No projects.")
				return err
			}
			for _, project := range projects {
				git := ""
				if project.IsGitRepo {
					git = " [git]"
				}
				fmt.Fprintf(out, "%s\t%s%s\t%s\n", project.ID, project.Name, git, project.Path)
			}
			return nil
		},
	}
}

func newProjectsOpenCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Open a project by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			details, err := app.client.OpenProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return printProject(cmd, details)
		},
	}
}

func newProjectsCurrentCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the currently open project",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := connectClient(cmd, app); err != nil {
				return err
			}

			details, err := app.client.CurrentProject(cmd.Context())
			if err != nil {
				return err
			}
			if details == nil {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No project open.")
				return err
			}

			return printProject(cmd, details)
		},
	}
}

func printProject(cmd *cobra.Command, details *domain.ProjectDetails) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", details.Name, details.ID)
	fmt.Fprintf(out, "path: %s\n", details.Path)
	if details.Language != "" {
		fmt.Fprintf(out, "language: %s\n", details.Language)
	}
	if details.IsGitRepo {
		fmt.Fprintln(out, "git repository")
	}
	if len(details.Files) > 0 {
		fmt.Fprintf(out, "%d files\n", len(details.Files))
	}
	return nil
}
