package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := bytes.Buffer{}
	logger := NewWithWriter("count-frames", &buf, zerolog.InfoLevel)
	logger.Debug().Msg("hidden")
	logger.Info().Int("frames", 250).Msg("counted")
	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"app":"count-frames"`)
	require.Contains(t, out, `"frames":250`)
}
