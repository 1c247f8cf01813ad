// Package logging builds the zerolog logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w. format is console (human, colored unless NO_COLOR) or json.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl := zerolog.WarnLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var out io.Writer
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: termenv.EnvNoColor()}
	case "json":
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format: %s", format)
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
