package web

import (
	"embed"
	"io/fs"
)

// distFS contains the built admin SPA.
// Build the frontend into web/dist to replace the placeholder shell.
//
//go:embed all:dist
var distFS embed.FS

// Dist returns the SPA files rooted at dist/
func Dist() fs.FS {
	sub, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic(err)
	}
	return sub
}
