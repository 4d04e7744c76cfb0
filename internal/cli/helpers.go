package cli

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/pasosync/internal/apiclient"
)

// AddOutputFlags registers the agent-friendly output flags
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (IDs only)")
}

// FormatterFor builds an OutputFormatter from --json and --quiet
func FormatterFor(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{
		JSON:  jsonOutput,
		Quiet: quietMode,
		Out:   cmd.OutOrStdout(),
		Err:   cmd.ErrOrStderr(),
	}
}

// APIFor builds a CRUD client from --api-url or the configured base URL
func APIFor(cmd *cobra.Command) *apiclient.Client {
	base := ConfigFromContext(cmd.Context()).Client.APIURL
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		base = v
	}
	return apiclient.New(base, nil)
}

// OptionalString returns a pointer to the flag value when the flag was set
func OptionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// ReportedError marks an error the command already printed
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }
func (e *ReportedError) Unwrap() error { return e.Err }

// Report prints err through f and marks it as printed
func Report(f *OutputFormatter, err error) error {
	if fmtErr := f.Error(ErrorCode(err), err.Error()); fmtErr != nil {
		return err
	}
	return &ReportedError{Err: err}
}
