package cli

import (
	"fmt"
	"os"
	"strings"

	"replydesk/internal/config"
	"replydesk/internal/format"
	"replydesk/internal/logging"
	"replydesk/internal/model"
	"replydesk/internal/mutate"
	"replydesk/internal/perm"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigFile string
	ActorID    string
	Privilege  string
	Surface    string
	Domain     string
	Locale     string
	PrettyJSON bool
	Format     string

	cfg    *config.Config
	logger zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "replydesk",
		Short:        "Organize, order and resolve support reply templates",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show the grouped template board as an agent sees it
  replydesk templates list --format text

  # Reorder the shared board (admin on the admin surface)
  replydesk --privilege admin --surface admin items reorder grp-billing 2 0

  # Fill a template for a customer
  replydesk templates resolve tpl-refund --var customer_name=Ada --render

  # Direct template lookup (shortcut for: replydesk templates show <template-id>)
  replydesk tpl-refund
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("REPLYDESK_CONFIG", ""), "Config file (default: ~/.replydesk/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("REPLYDESK_ACTOR", "local"), "Acting user id (recorded in the activity log)")
	cmd.PersistentFlags().StringVar(&app.Privilege, "privilege", envOr("REPLYDESK_PRIVILEGE", "agent"), "Actor privilege (agent|admin)")
	cmd.PersistentFlags().StringVar(&app.Surface, "surface", envOr("REPLYDESK_SURFACE", "home"), "Surface the change comes from (home|admin)")
	cmd.PersistentFlags().StringVar(&app.Domain, "domain", "", "Template domain (replies|emails; default from config)")
	cmd.PersistentFlags().StringVar(&app.Locale, "locale", "", "Preferred body locale (default from config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("REPLYDESK_FORMAT", "json"), "Output format (json|yaml|text)")

	cmd.AddCommand(newTemplatesCmd(app))
	cmd.AddCommand(newGroupsCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newOverridesCmd(app))
	cmd.AddCommand(newSeedCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newPublishCmd(app))

	return cmd
}

// init resolves config and the logger once flags are parsed.
func (app *App) init(cmd *cobra.Command) error {
	switch app.Format {
	case "json", "yaml", "yml", "text":
	default:
		return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|yaml|text)", app.Format))
	}

	cfg, err := config.Load(app.ConfigFile)
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.Domain != "" {
		cfg.Domain = app.Domain
	}
	if app.Locale != "" {
		cfg.Locale = app.Locale
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.logger = logger.With().Str("actor", app.ActorID).Logger()
	return nil
}

func (app *App) domain() model.Domain { return model.Domain(app.cfg.Domain) }

// scope is who is acting and where, as given by --actor, --privilege and --surface.
func (app *App) scope() (mutate.Scope, error) {
	priv, ok := perm.ParsePrivilege(strings.TrimSpace(app.Privilege))
	if !ok {
		return mutate.Scope{}, fmt.Errorf("unknown privilege: %s (want agent|admin)", app.Privilege)
	}
	surface, ok := perm.ParseSurface(strings.TrimSpace(app.Surface))
	if !ok {
		return mutate.Scope{}, fmt.Errorf("unknown surface: %s (want home|admin)", app.Surface)
	}
	return mutate.Scope{Actor: model.Actor{ID: app.ActorID, Privilege: priv}, Surface: surface}, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// textOutput is implemented by payloads with a human-readable rendering for --format text.
type textOutput interface {
	writeText(cmd *cobra.Command) error
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	if app.Format == "text" {
		if tv, ok := v.(textOutput); ok {
			return tv.writeText(cmd)
		}
		return format.WriteYAML(cmd.OutOrStdout(), v)
	}
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
