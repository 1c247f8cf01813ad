package cli

import (
	"errors"

	"replydesk/internal/mutate"
	"replydesk/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var (
		to        string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "publish [template-id] --to <dir>",
		Short: "Write the board (or one template) as markdown files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
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
			opt := publish.WriteOptions{Overwrite: overwrite}
			var res publish.WriteResult
			if len(args) == 0 {
				res, err = publish.WriteBoard(board, to, opt)
			} else {
				res, err = publishOne(board, args[0], to, opt)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}

func publishOne(board *mutate.Board, id, to string, opt publish.WriteOptions) (publish.WriteResult, error) {
	container, ok := locate(board, id)
	if !ok {
		return publish.WriteResult{}, errNotFound("template", id)
	}
	lane, _ := board.Lane(container)
	for _, t := range lane.Templates {
		if t.ID == id {
			return publish.WriteTemplate(t, lane.Group, to, opt)
		}
	}
	return publish.WriteResult{}, errNotFound("template", id)
}
