// Package views renders the embedded HTML templates. Every page template
// is parsed together with the shared layout and includes and executed
// through the "layout" template.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"yatube/app/middleware"

	"github.com/gorilla/mux"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages lists every page template, relative to templates/.
var Pages = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"users/signup.html",
	"users/login.html",
	"users/logged_out.html",
	"users/password_change_form.html",
	"users/password_change_done.html",
	"users/password_reset_form.html",
	"users/password_reset_done.html",
	"users/password_reset_confirm.html",
	"users/password_reset_complete.html",
	"about/author.html",
	"about/tech.html",
	"core/404.html",
	"core/500.html",
}

// Context is the data passed to a page. Render adds CurrentUser.
type Context map[string]interface{}

// Renderer executes page templates
type Renderer struct {
	templates map[string]*template.Template
}

// Static serves the embedded assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// New parses all page templates. URLs are reversed through the named
// routes of router when pages are rendered.
func New(router *mux.Router) (*Renderer, error) {
	funcs := Funcs(router)
	templates := make(map[string]*template.Template, len(Pages))
	for _, page := range Pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/includes/*.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render writes page with status. The page is buffered so that template
// errors never produce half-written responses.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data Context) error {
	tmpl, ok := v.templates[page]
	if !ok {
		return fmt.Errorf("unknown template %s", page)
	}
	if data == nil {
		data = Context{}
	}
	data["CurrentUser"] = middleware.CurrentUser(r.Context())
	data["Path"] = r.URL.Path

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	ugcPolicy = bluemonday.UGCPolicy()
)

// Markdown renders post text to sanitized HTML.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(text), &buf); err != nil {
		return Linebreaks(text)
	}
	return template.HTML(ugcPolicy.SanitizeBytes(buf.Bytes()))
}

// Linebreaks escapes text and turns newlines into <br>.
func Linebreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// Truncate shortens text to n runes, adding an ellipsis when cut.
func Truncate(n int, text string) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// Funcs are the template helpers.
func Funcs(router *mux.Router) template.FuncMap {
	return template.FuncMap{
		"url": func(name string, pairs ...interface{}) (string, error) {
			return Reverse(router, name, pairs...)
		},
		"markdown":   Markdown,
		"linebreaks": Linebreaks,
		"truncate":   Truncate,
		"date": func(t interface{ Format(string) string }) string {
			return t.Format("2 Jan 2006")
		},
	}
}

// Reverse builds the path of the named route; pairs are variable
// names and values.
func Reverse(router *mux.Router, name string, pairs ...interface{}) (string, error) {
	route := router.Get(name)
	if route == nil {
		return "", fmt.Errorf("no route named %q", name)
	}
	vars := make([]string, len(pairs))
	for i, p := range pairs {
		vars[i] = fmt.Sprint(p)
	}
	u, err := route.URLPath(vars...)
	if err != nil {
		return "", fmt.Errorf("failed to build url %q: %w", name, err)
	}
	return u.Path, nil
}
