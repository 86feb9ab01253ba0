package site

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// FS returns an http.FileSystem for the embedded assets.
func FS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return http.FS(staticFS)
	}
	return http.FS(sub)
}

// pages holds the parsed page templates.
var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"join": joinFloats,
}).ParseFS(templateFS, "templates/*.html.tmpl"))
