package task

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/cli"
)

// DueDateLayout is the accepted --due format
const DueDateLayout = "2006-01-02"

// parseDue reads --due; an unset or empty flag yields nil
func parseDue(cmd *cobra.Command) (*time.Time, error) {
	v := cli.OptionalString(cmd, "due")
	if v == nil || *v == "" {
		return nil, nil
	}
	due, err := time.Parse(DueDateLayout, *v)
	if err != nil {
		return nil, fmt.Errorf("invalid --due %q, want YYYY-MM-DD", *v)
	}
	return &due, nil
}
