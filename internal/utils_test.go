package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExecuteMissingFile(t *testing.T) {
	called := false
	run := func(ctx context.Context, w io.Writer, f io.Reader, o Options) error {
		called = true
		return nil
	}
	err := Execute(io.Discard, Options{}, filepath.Join(t.TempDir(), "nope.blend"), run)
	require.Error(t, err)
	require.False(t, called)
	require.Equal(t, ExitMissingInput, ExitCode(err))
}

func TestExecuteReadsFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "in.txt")
	require.NoError(t, os.WriteFile(name, []byte("payload"), 0644))
	buf := bytes.Buffer{}
	run := func(ctx context.Context, w io.Writer, f io.Reader, o Options) error {
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	require.NoError(t, Execute(&buf, Options{}, name, run))
	require.Equal(t, "payload", buf.String())
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	require.Equal(t, ExitMissingInput, ExitCode(&os.PathError{Op: "open", Path: "x", Err: os.ErrNotExist}))
}

func TestJsonPrinter(t *testing.T) {
	buf := bytes.Buffer{}
	jp := &JsonPrinter{W: &buf}
	jp.Print(map[string]int{"frameCount": 250}, true)
	jp.Print(map[string]int{"hidden": 1}, false)
	require.NoError(t, jp.Error())
	require.Equal(t, "{\"frameCount\":250}\n", buf.String())

	buf.Reset()
	jp = &JsonPrinter{W: &buf, Indent: true}
	jp.Print(struct {
		Name string `json:"name"`
	}{"Scene"}, true)
	require.Equal(t, "{\n  \"name\": \"Scene\"\n}\n", buf.String())
	require.False(t, strings.Contains(buf.String(), "hidden"))
}
