package cli

import (
	"errors"
	"strings"

	"replydesk/internal/model"
	"replydesk/internal/ordering"

	"github.com/spf13/cobra"
)

func newOverridesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "overrides",
		Aliases: []string{"override"},
		Short:   "Inspect or reset session-local ordering overrides",
	}
	cmd.AddCommand(newOverridesShowCmd(app))
	cmd.AddCommand(newOverridesResetCmd(app))
	return cmd
}

type overrideEntry struct {
	Scope     string         `json:"scope" yaml:"scope"`
	Positions map[string]int `json:"positions" yaml:"positions"`
}

func newOverridesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the stored overrides of the current domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := openOverrides(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ov.Close()

			scopes, err := ov.Scopes(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			prefix := ordering.ScopeKey(app.domain(), "")
			out := []overrideEntry{}
			for _, sc := range scopes {
				if !strings.HasPrefix(sc, prefix) {
					continue
				}
				pos, err := ov.Get(cmd.Context(), sc)
				if err != nil {
					return writeErr(cmd, err)
				}
				if pos == nil {
					continue
				}
				out = append(out, overrideEntry{Scope: sc, Positions: pos})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newOverridesResetCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "reset [container...]",
		Short: "Clear overrides of the given containers (groups, ungrouped, or the group list as 'groups')",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return writeErr(cmd, errors.New("name containers to reset, or pass --all"))
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			containers := make([]model.ContainerID, 0, len(args))
			for _, a := range args {
				containers = append(containers, containerArg(a))
			}
			if err := s.coord.ResetOverrides(cmd.Context(), containers...); err != nil {
				return writeErr(cmd, err)
			}
			app.logger.Info().Int("containers", len(containers)).Msg("overrides reset")
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"reset": true, "containers": containers}})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Reset every container of the current domain")
	return cmd
}
