// Package web bundles the dashboard templates and stylesheet into the binary.
package web

import "embed"

// Templates holds layouts, partials and pages parsed by the view engine.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static holds assets served under /static/.
//
//go:embed static/css/*.css
var Static embed.FS
