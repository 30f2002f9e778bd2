// Package web holds the server-rendered admin templates.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var templates embed.FS

// Engine returns a template engine over the embedded templates. Views are
// addressed by file name without the .html extension.
func Engine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", func(v any) string {
		if s, ok := v.(interface{ StringFixed(int32) string }); ok {
			return "$" + s.StringFixed(2)
		}
		return ""
	})
	return engine
}
