package project

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
)

// DeleteCmd returns the project delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project and its tasks",
		Long:  "Delete a project. Its tasks are deleted with it, and clients viewing it are sent back to the project list.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	formatter := cli.FormatterFor(cmd)

	ref, err := cli.APIFor(cmd).DeleteProject(cmd.Context(), args[0])
	if err != nil {
		return cli.Report(formatter, err)
	}
	return formatter.Success(ref)
}
