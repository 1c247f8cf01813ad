package cli

import (
	"fmt"

	"replydesk/internal/docs"
	"replydesk/internal/format"

	"github.com/spf13/cobra"
)

type docsOutput struct {
	Data struct {
		Topic    string `json:"topic" yaml:"topic"`
		Markdown string `json:"markdown" yaml:"markdown"`
	} `json:"data" yaml:"data"`
}

func (o docsOutput) writeText(cmd *cobra.Command) error {
	width := termWidth()
	if width == 0 {
		width = 80
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), format.RenderMarkdown(o.Data.Markdown, width))
	return err
}

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show documentation topics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `replydesk docs` to list topics)", topic))
			}
			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}

			var out docsOutput
			out.Data.Topic = topic
			out.Data.Markdown = body
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")

	return cmd
}
