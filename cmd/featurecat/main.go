// Command featurecat decodes GML, GeoJSON and JSON feature documents and
// prints the events they produce.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
)

var cli struct {
	Config       string   `short:"c" help:"Decoder configuration file" type:"existingfile"`
	Format       string   `short:"f" help:"Input format (gml, geojson or json), overrides the configuration"`
	Schema       string   `short:"s" help:"Schema file, overrides the configuration" type:"existingfile"`
	Capabilities string   `help:"WFS capabilities document naming the GML feature types" type:"existingfile"`
	FeatureType  []string `short:"t" help:"Feature type to decode, as prefix:local"`
	ChunkSize    int      `help:"Largest chunk pushed to the decoder, 0 for the read buffer size"`
	Metrics      bool     `short:"m" help:"Print decoder metrics after decoding"`
	NoColor      bool     `help:"Disable colored output"`
	Verbosity    int      `short:"v" help:"Log verbosity"`
	Files        []string `arg:"" optional:"" help:"Input documents, standard input if none" type:"existingfile"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("featurecat"),
		kong.Description("Decode feature documents into events."),
	)
	flag.CommandLine.Set("logtostderr", "true")
	flag.CommandLine.Set("v", strconv.Itoa(cli.Verbosity))
	if cli.NoColor {
		color.NoColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &runner{
		config:       cli.Config,
		format:       cli.Format,
		schema:       cli.Schema,
		capabilities: cli.Capabilities,
		featureTypes: cli.FeatureType,
		chunkSize:    cli.ChunkSize,
		metrics:      cli.Metrics,
		out:          color.Output,
	}
	if err := r.run(ctx, cli.Files); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
	fmt.Fprintf(color.Output, "%d features\n", r.features)
}
