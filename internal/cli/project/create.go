package project

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
	"github.com/thenoetrevino/pasosync/internal/models"
	projectservice "github.com/thenoetrevino/pasosync/internal/services/project"
)

// CreateCmd returns the project create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new project",
		Long: `Create a new project. Connected clients see it immediately.

Examples:
  pasosync project create --name "Backend"
  pasosync project create --name "Docs" --description "User guide" --quiet`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().String("name", "", "Project name (required)")
	cmd.Flags().String("description", "", "Project description")
	cmd.Flags().String("status", "", "Project status: in_progress or completed")
	_ = cmd.MarkFlagRequired("name")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, _ []string) error {
	formatter := cli.FormatterFor(cmd)

	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")
	status, _ := cmd.Flags().GetString("status")

	p, err := cli.APIFor(cmd).CreateProject(cmd.Context(), projectservice.CreateProjectRequest{
		Name:        name,
		Description: description,
		Status:      models.ProjectStatus(status),
	})
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(p)
}
