package cli

import (
	"errors"

	"replydesk/internal/model"
	"replydesk/internal/mutate"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Reorder templates within a group or move them between groups",
	}
	cmd.AddCommand(newItemsReorderCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	return cmd
}

func newItemsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <container> <from-index> <to-index>",
		Short: "Move the template at from-index to to-index inside one group (or ungrouped)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := app.scope()
			if err != nil {
				return writeErr(cmd, err)
			}
			from, err := parseIndex("from-index", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			to, err := parseIndex("to-index", args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			r, err := s.coord.ReorderWithinContainer(cmd.Context(), scope, containerArg(args[0]), from, to)
			if err != nil {
				return writeErr(cmd, err)
			}
			return finishChange(cmd, app, s, r)
		},
	}
}

func newItemsMoveCmd(app *App) *cobra.Command {
	var (
		to    string
		index int
	)

	cmd := &cobra.Command{
		Use:   "move <template-id> --to <container>",
		Short: "Move a template into another group (or ungrouped); appends unless --index is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := app.scope()
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("to") {
				return writeErr(cmd, errors.New("missing --to (group id or ungrouped)"))
			}
			var dropIndex *int
			if cmd.Flags().Changed("index") {
				if index < 0 {
					return writeErr(cmd, errors.New("--index must not be negative"))
				}
				dropIndex = &index
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			id := args[0]
			from, ok := locate(s.coord.Board(scope.WritePath()), id)
			if !ok {
				return writeErr(cmd, errNotFound("template", id))
			}
			r, err := s.coord.MoveItem(cmd.Context(), scope, id, from, containerArg(to), dropIndex)
			if err != nil {
				return writeErr(cmd, err)
			}
			return finishChange(cmd, app, s, r)
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Target group id (or ungrouped)")
	cmd.Flags().IntVar(&index, "index", 0, "Insert position in the target (default: append)")
	return cmd
}

// locate finds the container a template is shown in.
func locate(b *mutate.Board, id string) (model.ContainerID, bool) {
	lanes := make([]mutate.Lane, 0, len(b.Groups)+1)
	lanes = append(lanes, b.Groups...)
	lanes = append(lanes, b.Ungrouped)
	for _, l := range lanes {
		for _, t := range l.Templates {
			if t.ID == id {
				return l.Container, true
			}
		}
	}
	return "", false
}
