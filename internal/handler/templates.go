package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joestump/recipe-manager/web"
	"github.com/rs/zerolog/log"
)

// BasePage carries layout-level data available to every template.
type BasePage struct {
	Title string
	Flash *Flash
}

// pageCache maps a render key (e.g. "index.html") to a compiled template set
// containing base.html + partials + that one page file. Each page gets its
// own set so {{define "content"}} blocks don't collide.
var (
	pageCache    map[string]*template.Template
	fragmentTmpl *template.Template
)

// funcs is shared by every template set.
var funcs = template.FuncMap{
	// actions builds the data for recipe_actions from inside recipe_card.
	"actions": func(id int64, errMsg string) ActionsData {
		return ActionsData{ID: id, Error: errMsg}
	},
}

func init() {
	partials, err := fs.Glob(web.TemplateFS, "templates/partials/*.html")
	if err != nil {
		panic("glob partials: " + err.Error())
	}

	// Standalone set for HTMX fragment rendering (partials only).
	fragmentTmpl = template.Must(template.New("").Funcs(funcs).ParseFS(web.TemplateFS, partials...))

	pageCache = make(map[string]*template.Template)
	err = fs.WalkDir(web.TemplateFS, "templates/pages", func(p string, d fs.DirEntry, e error) error {
		if e != nil || d.IsDir() || !strings.HasSuffix(p, ".html") {
			return e
		}

		files := make([]string, 0, 2+len(partials))
		files = append(files, "templates/base.html")
		files = append(files, partials...)
		files = append(files, p)

		t, err := template.New("").Funcs(funcs).ParseFS(web.TemplateFS, files...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		pageCache[filepath.Base(p)] = t
		return nil
	})
	if err != nil {
		panic("build page cache: " + err.Error())
	}
}

// Flash represents a one-time notification message shown to the user.
type Flash struct {
	Type    string // "success" or "error"
	Message string
}

// isHTMX returns true when the request was sent by HTMX.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render executes a full-page template (base layout + named page).
func render(w http.ResponseWriter, status int, tmpl string, data any) {
	t, ok := pageCache[tmpl]
	if !ok {
		http.Error(w, "template not found: "+tmpl, http.StatusInternalServerError)
		return
	}
	execute(w, status, t, "base", data)
}

// renderFragment executes a named template from the partials set. Use for
// HTMX swaps (recipe_list, recipe_form, recipe_actions, delete_confirm).
func renderFragment(w http.ResponseWriter, status int, tmpl string, data any) {
	execute(w, status, fragmentTmpl, tmpl, data)
}

// execute renders into a buffer first so a template error never leaves a
// half-written page behind a 200.
func execute(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("handler: render")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
