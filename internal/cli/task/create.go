package task

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
	"github.com/thenoetrevino/pasosync/internal/models"
	taskservice "github.com/thenoetrevino/pasosync/internal/services/task"
)

// CreateCmd returns the task create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		Long: `Create a new task in a project.

Examples:
  pasosync task create --project <id> --title "Write docs"
  pasosync task create --project <id> --title "Release" --due 2026-12-01 --quiet`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().String("project", "", "Project id (required)")
	cmd.Flags().String("title", "", "Task title (required)")
	cmd.Flags().String("description", "", "Task description")
	cmd.Flags().String("state", "", "CREATED, IN_PROGRESS, COMPLETED or ARCHIVED")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("title")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, _ []string) error {
	formatter := cli.FormatterFor(cmd)

	projectID, _ := cmd.Flags().GetString("project")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	state, _ := cmd.Flags().GetString("state")

	due, err := parseDue(cmd)
	if err != nil {
		return cli.Report(formatter, err)
	}

	t, err := cli.APIFor(cmd).CreateTask(cmd.Context(), taskservice.CreateTaskRequest{
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		State:       models.TaskState(state),
		DueDate:     due,
	})
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(t)
}
