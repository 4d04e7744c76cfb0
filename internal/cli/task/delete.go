package task

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
)

// DeleteCmd returns the task delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	formatter := cli.FormatterFor(cmd)

	ref, err := cli.APIFor(cmd).DeleteTask(cmd.Context(), args[0])
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(ref)
}
