package main

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/woozymasta/voronoimap/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Dir string `short:"d" long:"dir" env:"ASSETS_DIR" description:"Assets directory" default:"assets"`
}

type PageData struct {
	CSS string
	JS  string
	SVG string
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

	opts.Logger.Setup()

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	load := func(name, mediatype string) string {
		path := filepath.Join(opts.Dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to read asset")
		}
		if mediatype == "" {
			return string(raw)
		}

		out, err := m.String(mediatype, string(raw))
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to minify asset")
		}
		log.Debug().
			Str("path", path).
			Int("size", len(raw)).
			Int("minified", len(out)).
			Msg("Asset minified")
		return out
	}

	data := PageData{
		CSS: load("style.css", "text/css"),
		JS:  load("script.js", "text/javascript"),
		SVG: load("favicon.svg", "image/svg+xml"),
	}

	tmpl, err := template.New("index").Parse(load("index.html.tpl", ""))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Fatal().Err(err).Msg("Failed to execute template")
	}

	finalHTML, err := m.String("text/html", buf.String())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to minify HTML")
	}

	out := filepath.Join(opts.Dir, "index.html")
	if err := os.WriteFile(out, []byte(finalHTML), 0644); err != nil {
		log.Fatal().Err(err).Str("path", out).Msg("Failed to write index")
	}

	log.Info().Str("path", out).Int("size", len(finalHTML)).Msg("Minify done")
}
