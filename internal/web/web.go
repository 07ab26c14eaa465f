// Package web embeds the browser chat client served at "/".
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

func Assets() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
