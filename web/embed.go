// Package web provides embedded static assets (CSS) served at /static/.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:static
var staticFS embed.FS

// StaticSub returns the static asset tree rooted at static/, ready to be
// served behind a /static/ strip prefix.
func StaticSub() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embed paths are fixed at compile time
	}
	return sub
}
