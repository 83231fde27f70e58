package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel   = "RENDER_LOG_LEVEL"
	EnvLogNoColor = "RENDER_LOG_NOCOLOR"

	envLambdaFunction = "AWS_LAMBDA_FUNCTION_NAME"
)

// New returns a logger tagged with app and installs it as the global zerolog logger.
// Inside Lambda it writes JSON lines to stdout, elsewhere human readable lines to stderr.
func New(app string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if !InLambda() {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    os.Getenv(EnvLogNoColor) != "",
		}
	}
	logger := NewWithWriter(app, out, ParseLevel(os.Getenv(EnvLogLevel)))
	log.Logger = logger
	return logger
}

func NewWithWriter(app string, w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", app).Logger()
}

func InLambda() bool {
	return os.Getenv(envLambdaFunction) != ""
}

// ParseLevel maps a level name to a zerolog level. Unknown names give info.
func ParseLevel(raw string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
