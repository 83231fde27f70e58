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
	"github.com/Eyevinn/render-pipeline/internal/blend"
)

var usg = `Usage of %s:

%s lists the scenes of a Blender file and the size of the render job array, e.g. frame range, scene name
`

func parseOptions() internal.Options {
	opts := internal.Options{ShowScenes: true}
	flag.IntVar(&opts.FramesPerJob, "frames-per-job", 1, "number of frames rendered by each job of the array")
	flag.BoolVar(&opts.ShowScenes, "scenes", true, "show every scene")
	flag.BoolVar(&opts.Indent, "indent", false, "indent JSON output")
	flag.BoolVar(&opts.Version, "version", false, "print version")

	flag.Usage = func() {
		parts := strings.Split(os.Args[0], "/")
		name := parts[len(parts)-1]
		fmt.Fprintf(os.Stderr, usg, name, name)
		fmt.Fprintf(os.Stderr, "\nRun as: %s [options] file.blend (- for stdin) with options:\n\n", name)
		flag.PrintDefaults()
	}

	flag.Parse()
	return opts
}

type jobArray struct {
	FrameCount   int `json:"frameCount"`
	ArrayJobSize int `json:"arrayJobSize"`
}

func blendInfo(ctx context.Context, w io.Writer, f io.Reader, o internal.Options) error {
	scenes, err := blend.ReadScenes(f)
	if err != nil {
		return err
	}
	jp := &internal.JsonPrinter{W: w, Indent: o.Indent}
	for _, s := range scenes {
		jp.Print(s, o.ShowScenes)
	}
	frames, err := blend.FrameCount(scenes)
	if err != nil {
		return err
	}
	size, err := blend.JobArraySize(frames, o.FramesPerJob)
	if err != nil {
		return err
	}
	jp.Print(jobArray{FrameCount: frames, ArrayJobSize: size}, true)
	return jp.Error()
}

func main() {
	o, inFile := internal.ParseParams("blend-info", parseOptions)
	err := internal.Execute(os.Stdout, o, inFile, blendInfo)
	if err != nil {
		log.Print(err)
		os.Exit(internal.ExitCode(err))
	}
}
