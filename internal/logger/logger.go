// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger holds logging options shared by every command.
type Logger struct {
	Level   string `long:"log-level"  env:"LOG_LEVEL"  description:"Log level" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" default:"info"`
	Format  string `long:"log-format" env:"LOG_FORMAT" description:"Log format" choice:"console" choice:"json" default:"console"`
	NoColor bool   `long:"no-color"   env:"NO_COLOR"   description:"Disable colored console output"`
}

// Setup applies the options to the global logger.
func (l Logger) Setup() {
	log.Logger = zerolog.New(l.writer(os.Stderr)).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(ParseLevel(l.Level))
}

func (l Logger) writer(out io.Writer) io.Writer {
	if strings.EqualFold(l.Format, "json") {
		return out
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    l.NoColor,
		TimeFormat: time.DateTime,
	}
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}

	return lvl
}
