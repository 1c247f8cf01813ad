package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"replydesk/internal/format"
	"replydesk/internal/model"
	"replydesk/internal/mutate"

	"github.com/spf13/cobra"
)

type boardOutput struct {
	Data *mutate.Board `json:"data" yaml:"data"`
}

func (o boardOutput) writeText(cmd *cobra.Command) error {
	lanes := make([]format.Lane, 0, len(o.Data.Groups)+1)
	for _, l := range o.Data.Groups {
		title := string(l.Container)
		if l.Group != nil && l.Group.Name != "" {
			title = l.Group.Name
		}
		lanes = append(lanes, textLane(title, "("+string(l.Container)+")", l))
	}
	lanes = append(lanes, textLane("Ungrouped", "", o.Data.Ungrouped))
	fmt.Fprintf(cmd.OutOrStdout(), "%s board (%s)\n\n", o.Data.Domain, o.Data.Path)
	return format.WriteLanes(cmd.OutOrStdout(), lanes, termWidth())
}

func textLane(title, note string, l mutate.Lane) format.Lane {
	out := format.Lane{Title: title, Note: note}
	for _, t := range l.Templates {
		out.Rows = append(out.Rows, format.Row{ID: t.ID, Title: t.Title})
	}
	return out
}

type groupsOutput struct {
	Data []model.Group `json:"data" yaml:"data"`
}

func (o groupsOutput) writeText(cmd *cobra.Command) error {
	rows := make([]format.Row, 0, len(o.Data))
	for _, g := range o.Data {
		rows = append(rows, format.Row{ID: g.ID, Title: g.Name})
	}
	return format.WriteLanes(cmd.OutOrStdout(), []format.Lane{{Title: "Groups", Rows: rows}}, termWidth())
}

// termWidth reads COLUMNS; 0 disables truncation.
func termWidth() int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS")))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
