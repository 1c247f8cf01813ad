package cli

import (
	"errors"

	"replydesk/internal/mutate"

	"github.com/spf13/cobra"
)

type operationOutput struct {
	Data mutate.Operation `json:"data" yaml:"data"`
}

func newDragCmd(app *App) *cobra.Command {
	var (
		subject string
		from    string
		index   int
		target  string
		to      string
		at      int
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Apply a finished drag gesture (as a board UI would report it)",
		Example: `  # Drag the 3rd template of grp-billing onto the 1st slot of grp-shipping
  replydesk drag --from grp-billing --index 2 --target item --to grp-shipping --at 0

  # Drop a template on the ungrouped zone
  replydesk drag --from grp-billing --index 0 --target ungrouped

  # Drag the 2nd group to the top
  replydesk drag --subject group --index 1 --target item --at 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := app.scope()
			if err != nil {
				return writeErr(cmd, err)
			}
			intent := mutate.DragIntent{
				Subject:         mutate.SubjectKind(subject),
				SourceContainer: containerArg(from),
				SourceIndex:     index,
				Target:          mutate.DropTarget{Kind: mutate.TargetKind(target), Index: at},
			}
			if intent.Target.Kind != mutate.TargetUngrouped {
				intent.Target.Container = containerArg(to)
			}
			if intent.Subject == mutate.SubjectGroup {
				intent.SourceContainer = ""
			}
			if intent.Target.Kind == mutate.TargetItem && !cmd.Flags().Changed("at") {
				return writeErr(cmd, errors.New("--target item needs --at"))
			}

			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if dryRun {
				op, err := s.coord.ResolveDrop(scope, intent)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, operationOutput{Data: op})
			}
			r, err := s.coord.ApplyDrag(cmd.Context(), scope, intent)
			if err != nil {
				return writeErr(cmd, err)
			}
			return finishChange(cmd, app, s, r)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", string(mutate.SubjectItem), "What was dragged (item|group)")
	cmd.Flags().StringVar(&from, "from", "", "Source container of a dragged item (group id or ungrouped)")
	cmd.Flags().IntVar(&index, "index", 0, "Index of the dragged item (or group) in its view")
	cmd.Flags().StringVar(&target, "target", string(mutate.TargetContainer), "Drop target kind (item|container|ungrouped)")
	cmd.Flags().StringVar(&to, "to", "", "Target container (group id or ungrouped)")
	cmd.Flags().IntVar(&at, "at", 0, "Target index for --target item")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify the gesture without applying it")
	return cmd
}
