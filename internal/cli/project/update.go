package project

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
	"github.com/thenoetrevino/pasosync/internal/models"
	projectservice "github.com/thenoetrevino/pasosync/internal/services/project"
)

// UpdateCmd returns the project update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Update a project's name, description or status",
		Long:  "Update a project. Only the flags that are given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("status", "", "New status: in_progress or completed")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	formatter := cli.FormatterFor(cmd)

	req := projectservice.UpdateProjectRequest{
		ID:          args[0],
		Name:        cli.OptionalString(cmd, "name"),
		Description: cli.OptionalString(cmd, "description"),
	}
	if s := cli.OptionalString(cmd, "status"); s != nil {
		status := models.ProjectStatus(*s)
		req.Status = &status
	}

	p, err := cli.APIFor(cmd).UpdateProject(cmd.Context(), req)
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(p)
}
