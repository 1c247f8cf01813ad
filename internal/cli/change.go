package cli

import (
	"fmt"
	"strconv"
	"strings"

	"replydesk/internal/model"
	"replydesk/internal/mutate"

	"github.com/spf13/cobra"
)

type change struct {
	Operation mutate.Operation `json:"operation" yaml:"operation"`
	Path      string           `json:"path" yaml:"path"`
	Changed   bool             `json:"changed" yaml:"changed"`
	// Order is the resulting view of the target container.
	Order  []string `json:"order" yaml:"order"`
	Source []string `json:"source,omitempty" yaml:"source,omitempty"`
}

type changeOutput struct {
	Data change `json:"data" yaml:"data"`
}

func (o changeOutput) writeText(cmd *cobra.Command) error {
	d := o.Data
	out := cmd.OutOrStdout()
	if !d.Changed {
		_, err := fmt.Fprintf(out, "%s %s: no change\n", d.Operation.Kind, d.Operation.To)
		return err
	}
	fmt.Fprintf(out, "%s %s (%s)\n", d.Operation.Kind, d.Operation.ItemID, d.Path)
	fmt.Fprintf(out, "  %s: %s\n", d.Operation.To, strings.Join(d.Order, ", "))
	if d.Operation.Kind == mutate.OpMove {
		fmt.Fprintf(out, "  %s: %s\n", d.Operation.From, strings.Join(d.Source, ", "))
	}
	return nil
}

// finishChange waits for persistence and reports the resulting order.
func finishChange(cmd *cobra.Command, app *App, s *session, r *mutate.Result) error {
	if err := r.Wait(cmd.Context()); err != nil {
		return writeErr(cmd, err)
	}
	out := change{Operation: r.Op, Path: r.Path.String(), Changed: r.Changed}
	order, err := s.coord.View(r.Path, r.Op.To)
	if err != nil {
		return writeErr(cmd, err)
	}
	out.Order = order
	if r.Op.Kind == mutate.OpMove {
		source, err := s.coord.View(r.Path, r.Op.From)
		if err != nil {
			return writeErr(cmd, err)
		}
		out.Source = source
	}
	if out.Order == nil {
		out.Order = []string{}
	}
	return writeOut(cmd, app, changeOutput{Data: out})
}

func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, badArgError{name: name, value: s}
	}
	return n, nil
}

// containerArg accepts a group id or "ungrouped".
func containerArg(s string) model.ContainerID {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(model.Ungrouped)) {
		return model.Ungrouped
	}
	return model.ContainerID(s)
}
