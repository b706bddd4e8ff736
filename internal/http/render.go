package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
)

var pageNames = []string{"home", "calculators", "calculator", "about", "contact", "not_found"}

// renderer holds one template set per page. Every set shares the layout and
// partials and defines its own "content" block.
type renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	worker   *texttemplate.Template
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

func newRenderer(templates fs.FS, serviceWorker string) (*renderer, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(templates, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &renderer{pages: make(map[string]*template.Template, len(pageNames)), partials: base}
	for _, name := range pageNames {
		set, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := set.ParseFS(templates, path.Join("templates/pages", name+".html")); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = set
	}

	r.worker, err = texttemplate.New("sw.js").Parse(serviceWorker)
	if err != nil {
		return nil, fmt.Errorf("parse service worker: %w", err)
	}
	return r, nil
}

// page renders a full document. Output is buffered so a template failure
// never leaves a half-written response.
func (r *renderer) page(p Page) ([]byte, error) {
	set, ok := r.pages[p.Template]
	if !ok {
		return nil, fmt.Errorf("unknown page template %q", p.Template)
	}
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, "layout", p); err != nil {
		return nil, fmt.Errorf("render page %s: %w", p.Template, err)
	}
	return buf.Bytes(), nil
}

// partial renders a named fragment such as "results".
func (r *renderer) partial(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.partials.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render partial %s: %w", name, err)
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}

type workerData struct {
	Version string
	Assets  []string
}

// serviceWorker renders the offline worker for a cache version.
func (r *renderer) serviceWorker(version string, assets []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.worker.Execute(&buf, workerData{Version: version, Assets: assets}); err != nil {
		return nil, fmt.Errorf("render service worker: %w", err)
	}
	return buf.Bytes(), nil
}

// precacheAssets lists what the offline worker stores on install: the shell
// pages, static files and every featured calculator.
func precacheAssets(static fs.FS, featured []string) []string {
	assets := []string{"/", "/calculators", "/about", "/contact"}
	for _, id := range featured {
		assets = append(assets, "/calculator/"+id)
	}
	_ = fs.WalkDir(static, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		assets = append(assets, "/static/"+strings.TrimPrefix(p, "./"))
		return nil
	})
	return assets
}
