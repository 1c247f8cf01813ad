package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"replydesk/internal/format"
	"replydesk/internal/model"
	"replydesk/internal/resolve"
	"replydesk/internal/store"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "List, inspect and resolve templates",
	}
	cmd.AddCommand(newTemplatesListCmd(app))
	cmd.AddCommand(newTemplatesShowCmd(app))
	cmd.AddCommand(newTemplatesResolveCmd(app))
	cmd.AddCommand(newTemplatesTokensCmd(app))
	return cmd
}

func newTemplatesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show templates grouped and ordered as the current scope sees them",
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
			return writeOut(cmd, app, boardOutput{Data: s.coord.Board(scope.WritePath())})
		},
	}
}

type templateView struct {
	model.Template `yaml:",inline"`
	Locale         string   `json:"locale" yaml:"locale"`
	Body           string   `json:"body" yaml:"body"`
	Tokens         []string `json:"tokens" yaml:"tokens"`
}

type templateOutput struct {
	Data templateView `json:"data" yaml:"data"`
}

func (o templateOutput) writeText(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", o.Data.Title, o.Data.ID)
	fmt.Fprintf(out, "group: %s  position: %d\n\n", o.Data.Container(), o.Data.Position)
	fmt.Fprintln(out, o.Data.Body)
	return nil
}

func loadTemplate(cmd *cobra.Command, app *App, id string) (model.Template, error) {
	st, err := openStore(cmd.Context(), app)
	if err != nil {
		return model.Template{}, err
	}
	defer st.Close()
	t, err := st.GetTemplate(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return model.Template{}, errNotFound("template", id)
	}
	return t, err
}

func newTemplatesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <template-id>",
		Short: "Show one template with its body for the configured locale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTemplate(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			body := t.BodyFor(app.cfg.Locale)
			tokens := resolve.Extract(body)
			if tokens == nil {
				tokens = []string{}
			}
			return writeOut(cmd, app, templateOutput{Data: templateView{Template: t, Locale: app.cfg.Locale, Body: body, Tokens: tokens}})
		},
	}
}

type resolved struct {
	ID      string   `json:"id" yaml:"id"`
	Locale  string   `json:"locale" yaml:"locale"`
	Text    string   `json:"text" yaml:"text"`
	Missing []string `json:"missing" yaml:"missing"`
}

type resolvedOutput struct {
	Data resolved `json:"data" yaml:"data"`
}

func (o resolvedOutput) writeText(cmd *cobra.Command) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), o.Data.Text)
	return err
}

func newTemplatesResolveCmd(app *App) *cobra.Command {
	var (
		vars       []string
		customer   []string
		agentName  string
		agentEmail string
		tz         string
		render     bool
		width      int
	)

	cmd := &cobra.Command{
		Use:   "resolve <template-id>",
		Short: "Fill a template's {name} and [name] tokens",
		Long: strings.TrimSpace(`
Builds a resolution context from --customer fields (stored as customer_<name>, with
customer_<name>_upper aliases), the agent identity, the clock (date, time, datetime,
weekday) and --var overrides, then substitutes it into the template body. Tokens that
cannot be filled are left as written and reported under "missing".
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := loadTemplate(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			loc := time.UTC
			if strings.TrimSpace(tz) != "" {
				l, err := time.LoadLocation(tz)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("invalid --tz: %w", err))
				}
				loc = l
			}
			fields, err := parseKV(customer)
			if err != nil {
				return writeErr(cmd, err)
			}

			b := resolve.NewBuilder().Clock(time.Now(), loc).Customer(fields)
			if agentName != "" || agentEmail != "" {
				b.Agent(agentName, agentEmail)
			}
			if err := b.Vars(vars); err != nil {
				return writeErr(cmd, err)
			}
			rctx, err := b.ResolutionContext(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			body := t.BodyFor(app.cfg.Locale)
			out := resolved{
				ID:      t.ID,
				Locale:  app.cfg.Locale,
				Text:    resolve.Resolve(body, rctx),
				Missing: resolve.Missing(body, rctx),
			}
			if out.Missing == nil {
				out.Missing = []string{}
			}
			if len(out.Missing) > 0 {
				app.logger.Debug().Str("template", t.ID).Strs("missing", out.Missing).Msg("unresolved tokens")
			}
			if render {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), format.RenderMarkdown(out.Text, width))
				return err
			}
			return writeOut(cmd, app, resolvedOutput{Data: out})
		},
	}
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Context value name=value (repeatable; exact token name)")
	cmd.Flags().StringArrayVar(&customer, "customer", nil, "Customer field name=value (repeatable)")
	cmd.Flags().StringVar(&agentName, "agent-name", envOr("REPLYDESK_AGENT_NAME", ""), "Agent display name")
	cmd.Flags().StringVar(&agentEmail, "agent-email", envOr("REPLYDESK_AGENT_EMAIL", ""), "Agent email")
	cmd.Flags().StringVar(&tz, "tz", "", "Time zone for date/time tokens (default UTC)")
	cmd.Flags().BoolVar(&render, "render", false, "Render the resolved body as terminal markdown")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

type tokensOutput struct {
	Data struct {
		ID     string   `json:"id,omitempty" yaml:"id,omitempty"`
		Tokens []string `json:"tokens" yaml:"tokens"`
	} `json:"data" yaml:"data"`
}

func newTemplatesTokensCmd(app *App) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "tokens [template-id]",
		Short: "List the tokens a template (all locales) or --text references",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out tokensOutput
			out.Data.Tokens = []string{}
			switch {
			case len(args) == 1 && text != "":
				return writeErr(cmd, errors.New("provide a template id or --text, not both"))
			case len(args) == 1:
				t, err := loadTemplate(cmd, app, args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				out.Data.ID = t.ID
				seen := map[string]bool{}
				for _, b := range t.Bodies {
					for _, name := range resolve.Extract(b.Body) {
						if !seen[name] {
							seen[name] = true
							out.Data.Tokens = append(out.Data.Tokens, name)
						}
					}
				}
			case text != "":
				out.Data.Tokens = append(out.Data.Tokens, resolve.Extract(text)...)
			default:
				return writeErr(cmd, errors.New("provide a template id or --text"))
			}
			return writeOut(cmd, app, out)
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Extract tokens from this text instead of a template")
	return cmd
}

func parseKV(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q (want name=value)", p)
		}
		out[k] = v
	}
	return out, nil
}
