package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"StockScope/internal/model"
	"StockScope/internal/notifier"
)

// Output handles formatted output for CLI commands.
type Output struct {
	writer   io.Writer
	jsonMode bool
}

// NewOutput creates an Output from the command's --json flag.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{writer: cmd.OutOrStdout(), jsonMode: jsonMode}
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool { return o.jsonMode }

// JSON outputs data as indented JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

type summaryOutput struct {
	Summaries []model.Summary   `json:"summaries"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Summaries prints the results as JSON or as a table.
func (o *Output) Summaries(summaries []model.Summary, failures []notifier.Failure) error {
	if !o.jsonMode {
		notifier.RenderTable(o.writer, summaries, failures)
		return nil
	}
	out := summaryOutput{Summaries: summaries}
	if out.Summaries == nil {
		out.Summaries = []model.Summary{}
	}
	for _, f := range failures {
		if out.Errors == nil {
			out.Errors = map[string]string{}
		}
		out.Errors[f.Symbol] = f.Err.Error()
	}
	return o.JSON(out)
}
