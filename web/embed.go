// Package web 内嵌任务面板的静态页面
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var content embed.FS

// StaticFiles 以 static 目录为根
var StaticFiles fs.FS = mustSub(content, "static")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
