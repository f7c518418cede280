// Package web serves the matching API and a small playground page over HTTP.
// Binds to localhost only; there is no network exposure and no auth.
package web

import "embed"

//go:embed static/index.html
var staticFS embed.FS
