package internal

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
)

// Exit statuses shared by the command line tools.
const (
	ExitFailure      = 1
	ExitMissingInput = 2
)

type Options struct {
	FramesPerJob   int
	MaxNrPictures  int
	Version        bool
	Indent         bool
	ShowScenes     bool
	ShowStreamInfo bool
	ShowStatistics bool
	ShowPictures   bool
}

type OptionParseFunc func() Options
type RunableFunc func(ctx context.Context, w io.Writer, f io.Reader, o Options) error

func ParseParams(tool string, function OptionParseFunc) (o Options, inFile string) {
	o = function()
	if o.Version {
		fmt.Printf("%s version %s\n", tool, GetVersion())
		os.Exit(0)
	}
	if len(flag.Args()) < 1 {
		flag.Usage()
		os.Exit(ExitFailure)
	}
	inFile = flag.Args()[0]
	return o, inFile
}

func Execute(w io.Writer, o Options, inFile string, function RunableFunc) error {
	// Create a cancellable context in case you want to stop reading any time you want
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()

	var f io.Reader
	if inFile == "-" {
		f = os.Stdin
	} else {
		fh, err := os.Open(inFile)
		if err != nil {
			return err
		}
		f = fh
		defer fh.Close()
	}

	return function(ctx, w, f, o)
}

// ExitCode maps an error from Execute to the process exit status.
// A missing input file exits with ExitMissingInput.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, fs.ErrNotExist) {
		return ExitMissingInput
	}
	return ExitFailure
}
