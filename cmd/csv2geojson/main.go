package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/voronoimap/internal/geo"
	"github.com/woozymasta/voronoimap/internal/source"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Input CSV path. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format; inline emits a stations block for config.yaml" choice:"json" choice:"yaml" choice:"inline" default:"json"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	stations, err := source.ReadCSV(bytes.NewReader(inputData))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing CSV: %v\n", err)
		os.Exit(1)
	}

	outputData, err := encode(stations, opts.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d stations to %s (format: %s)\n", len(stations), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}

func encode(stations []geo.NamedStation, format string) ([]byte, error) {
	if format == "inline" {
		return yaml.Marshal(map[string]any{
			"stations": map[string]any{"inline": stations},
		})
	}

	fc := geojson.NewFeatureCollection()
	for i, s := range stations {
		fc.Append(geo.StationFeature(s, i))
	}

	if format != "yaml" {
		return json.MarshalIndent(fc, "", "  ")
	}

	// round trip through JSON so the YAML keeps GeoJSON member names
	raw, err := json.Marshal(fc)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}
