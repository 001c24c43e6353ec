// Package web holds the page templates and static assets served by the
// portal.
package web

import (
	"embed"
	"io/fs"
)

//go:embed tmpl static
var content embed.FS

// FS is the template and asset tree.
func FS() fs.FS {
	return content
}

// Static is the asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
