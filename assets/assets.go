// Package assets embeds the web front end served by cmd/server.
package assets

import _ "embed"

// Index is the single page application built by cmd/minify.
//
//go:embed index.html
var Index []byte

// Favicon is the site icon.
//
//go:embed favicon.svg
var Favicon []byte
