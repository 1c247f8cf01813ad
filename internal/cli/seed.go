package cli

import (
	"io"
	"os"

	"replydesk/internal/store"

	"github.com/spf13/cobra"
)

func newSeedCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml|->",
		Short: "Import groups and templates from a yaml file (file order defines order)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				r = f
			}
			seed, err := store.LoadSeed(r)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := seed.Normalize(app.domain()); err != nil {
				return writeErr(cmd, err)
			}

			st, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()
			if err := seed.Apply(cmd.Context(), st); err != nil {
				return writeErr(cmd, err)
			}
			app.logger.Info().Int("groups", len(seed.Groups)).Int("templates", len(seed.Templates)).Msg("seed applied")
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"domain":    seed.Domain,
				"groups":    len(seed.Groups),
				"templates": len(seed.Templates),
			}})
		},
	}
}
