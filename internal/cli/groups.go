package cli

import (
	"replydesk/internal/model"

	"github.com/spf13/cobra"
)

func newGroupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "List and reorder template groups",
	}
	cmd.AddCommand(newGroupsListCmd(app))
	cmd.AddCommand(newGroupsReorderCmd(app))
	return cmd
}

func newGroupsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List groups in the order the current scope sees them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := app.scope()
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			board := s.coord.Board(scope.WritePath())
			groups := make([]model.Group, 0, len(board.Groups))
			for _, l := range board.Groups {
				if l.Group != nil {
					groups = append(groups, *l.Group)
				}
			}
			return writeOut(cmd, app, groupsOutput{Data: groups})
		},
	}
}

func newGroupsReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <from-index> <to-index>",
		Short: "Move the group at from-index to to-index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := app.scope()
			if err != nil {
				return writeErr(cmd, err)
			}
			from, err := parseIndex("from-index", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			to, err := parseIndex("to-index", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			r, err := s.coord.ReorderContainers(cmd.Context(), scope, from, to)
			if err != nil {
				return writeErr(cmd, err)
			}
			return finishChange(cmd, app, s, r)
		},
	}
}
