package task

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
)

// ListCmd returns the task list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally of one project",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().String("project", "", "Project id")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	formatter := cli.FormatterFor(cmd)
	projectID, _ := cmd.Flags().GetString("project")

	tasks, err := cli.APIFor(cmd).ListTasks(cmd.Context(), projectID)
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(tasks)
}
