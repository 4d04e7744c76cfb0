package task

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
	"github.com/thenoetrevino/pasosync/internal/models"
	taskservice "github.com/thenoetrevino/pasosync/internal/services/task"
)

// UpdateCmd returns the task update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Long:  "Update a task. Only the flags that are given are changed.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("state", "", "CREATED, IN_PROGRESS, COMPLETED or ARCHIVED")
	cmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	formatter := cli.FormatterFor(cmd)

	req := taskservice.UpdateTaskRequest{
		TaskID:      args[0],
		Title:       cli.OptionalString(cmd, "title"),
		Description: cli.OptionalString(cmd, "description"),
	}
	if s := cli.OptionalString(cmd, "state"); s != nil {
		state := models.TaskState(*s)
		req.State = &state
	}
	req.ClearDue, _ = cmd.Flags().GetBool("clear-due")

	due, err := parseDue(cmd)
	if err != nil {
		return cli.Report(formatter, err)
	}
	req.DueDate = due

	t, err := cli.APIFor(cmd).UpdateTask(cmd.Context(), req)
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(t)
}
