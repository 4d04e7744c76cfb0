package project

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
)

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all projects",
		Long:  "List all projects with their id, name and status.",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	formatter := cli.FormatterFor(cmd)

	projects, err := cli.APIFor(cmd).ListProjects(cmd.Context())
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(projects)
}
