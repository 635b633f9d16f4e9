// Command zoomchart-demo displays a CSV of x, y[, size] points in an
// interactive zoomchart. The file keeps being tailed after load, so a
// recording in progress can be watched live.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"

	"git.sr.ht/~whereswaldon/zoomchart/data"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	filePath := flag.String("file", "", "CSV file of x, y[, size] points to display")
	flag.Parse()
	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *filePath != "" {
		cfg.File = *filePath
	}
	go func() {
		w := app.NewWindow(app.Title("zoomchart demo"))
		if err := loop(w, cfg); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func loop(w *app.Window, cfg Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	expl := explorer.NewExplorer(w)
	mutator := stream.NewMutator(ctx)
	controller := stream.NewController(ctx, w.Invalidate)
	source, err := data.NewSource(ctx, mutator)
	if err != nil {
		return err
	}
	ui := NewUI(w, controller, source, expl, cfg)

	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			return err
		}
		source.LoadFromStream(f)
	}

	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case system.DestroyEvent:
			return ev.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
