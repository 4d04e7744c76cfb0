// Package cli holds helpers shared by the pasosync commands: output
// formatting and exit codes.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/thenoetrevino/pasosync/internal/models"
)

// OutputFormatter handles three output modes: JSON, quiet, and human-readable
type OutputFormatter struct {
	JSON  bool
	Quiet bool

	Out io.Writer // Defaults to os.Stdout
	Err io.Writer // Defaults to os.Stderr
}

func (f *OutputFormatter) out() io.Writer {
	if f.Out == nil {
		return os.Stdout
	}
	return f.Out
}

func (f *OutputFormatter) err() io.Writer {
	if f.Err == nil {
		return os.Stderr
	}
	return f.Err
}

// Success outputs successful operation result
func (f *OutputFormatter) Success(data any) error {
	if f.Quiet {
		return f.printIDs(data)
	}

	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": true,
			"data":    data,
		})
	}

	return f.prettyPrint(data)
}

// Error outputs error information
func (f *OutputFormatter) Error(code string, message string) error {
	if f.JSON {
		return json.NewEncoder(f.out()).Encode(map[string]any{
			"success": false,
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		})
	}

	_, err := fmt.Fprintf(f.err(), "Error: %s\n", message)
	return err
}

// printIDs writes one id per line, for piping into other commands
func (f *OutputFormatter) printIDs(data any) error {
	w := f.out()
	var err error
	switch v := data.(type) {
	case *models.Project:
		_, err = fmt.Fprintln(w, v.ID)
	case *models.Task:
		_, err = fmt.Fprintln(w, v.ID)
	case *models.ProjectRef:
		_, err = fmt.Fprintln(w, v.ID)
	case *models.TaskRef:
		_, err = fmt.Fprintln(w, v.ID)
	case []*models.Project:
		for _, p := range v {
			if _, err = fmt.Fprintln(w, p.ID); err != nil {
				return err
			}
		}
	case []*models.Task:
		for _, t := range v {
			if _, err = fmt.Fprintln(w, t.ID); err != nil {
				return err
			}
		}
	}
	return err
}

// prettyPrint formats data for human-readable output
func (f *OutputFormatter) prettyPrint(data any) error {
	w := f.out()
	switch v := data.(type) {
	case *models.Project:
		_, err := fmt.Fprintf(w, "Project %q (%s) %s\n", v.Name, v.ID, v.Status)
		return err
	case *models.Task:
		_, err := fmt.Fprintf(w, "Task %q (%s) %s\n", v.Title, v.ID, v.State)
		return err
	case *models.ProjectRef:
		_, err := fmt.Fprintf(w, "Project %q (%s) deleted\n", v.Name, v.ID)
		return err
	case *models.TaskRef:
		_, err := fmt.Fprintf(w, "Task %q (%s) deleted\n", v.Title, v.ID)
		return err
	case []*models.Project:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tSTATUS")
		for _, p := range v {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Status)
		}
		return tw.Flush()
	case []*models.Task:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTITLE\tSTATE")
		for _, t := range v {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Title, t.State)
		}
		return tw.Flush()
	}
	_, err := fmt.Fprintf(w, "%+v\n", data)
	return err
}
