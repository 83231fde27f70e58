package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/Eyevinn/render-pipeline/internal"
	"github.com/Eyevinn/render-pipeline/internal/probe"
)

var usg = `Usage of %s:

%s lists information about rendered TS or MP4 files, e.g. streams, picture count, frame rate, etc
`

func parseOptions() internal.Options {
	opts := internal.Options{}
	flag.IntVar(&opts.MaxNrPictures, "max", 0, "max nr pictures to parse (0 for all)")
	flag.BoolVar(&opts.ShowStreamInfo, "streams", false, "only list the elementary streams of a TS file")
	flag.BoolVar(&opts.ShowPictures, "pictures", false, "show every picture")
	flag.BoolVar(&opts.ShowStatistics, "statistics", false, "show per stream statistics")
	flag.BoolVar(&opts.Indent, "indent", false, "indent JSON output")
	flag.BoolVar(&opts.Version, "version", false, "print version")

	flag.Usage = func() {
		parts := strings.Split(os.Args[0], "/")
		name := parts[len(parts)-1]
		fmt.Fprintf(os.Stderr, usg, name, name)
		fmt.Fprintf(os.Stderr, "\nRun as: %s [options] file (- for stdin) with options:\n\n", name)
		flag.PrintDefaults()
	}

	flag.Parse()
	return opts
}

func renderInfo(ctx context.Context, w io.Writer, f io.Reader, o internal.Options) error {
	jp := &internal.JsonPrinter{W: w, Indent: o.Indent}
	if o.ShowStreamInfo {
		streams, err := probe.ListStreams(f)
		if err != nil {
			return err
		}
		for _, s := range streams {
			jp.Print(s, true)
		}
		return jp.Error()
	}

	rep, err := probe.InspectReader(ctx, w, f, o)
	if err != nil {
		return err
	}
	if !o.ShowStatistics {
		rep.Statistics = nil
	}
	jp.Print(rep, true)
	return jp.Error()
}

func main() {
	o, inFile := internal.ParseParams("render-info", parseOptions)
	err := internal.Execute(os.Stdout, o, inFile, renderInfo)
	if err != nil {
		log.Print(err)
		os.Exit(internal.ExitCode(err))
	}
}
