package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"fracc/internal/core"
	"fracc/internal/listview"
)

// renderer holds one template set per page: the layout and shared partials
// cloned and extended with the page file, so every page can define its own
// "content" and "screen" blocks.
type renderer struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"join":    strings.Join,
	"id":      func(v int64) string { return strconv.FormatInt(v, 10) },
	"has":     func(list []string, v string) bool { return slices.Contains(list, v) },
	"pageURL": func(path string, st listview.State, page int) string {
		if q := st.Query(page); q != "" {
			return path + "?" + q
		}
		return path
	},
	"pagerOf": func(path string, list any) map[string]any {
		return map[string]any{"Path": path, "List": list}
	},
	"facet": func(name, label, selected string, options any) map[string]any {
		if selected == "" {
			selected = listview.AllValue
		}
		return map[string]any{"Name": name, "Label": label, "Selected": selected, "Options": options}
	},
}

func newRenderer(fsys fs.FS) (*renderer, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}

	rd := &renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		rd.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return rd, nil
}

// execute renders template name of page into memory so a failure never
// leaves a half-written response.
func (rd *renderer) execute(page, name string, data any) ([]byte, error) {
	t, ok := rd.pages[page]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s/%s: %w", page, name, err)
	}
	return buf.Bytes(), nil
}

type navItem struct {
	Label  string
	Href   string
	Active bool
}

// pageData is what every page template receives.
type pageData struct {
	Title   string
	Path    string
	Query   string
	Session core.Session
	Nav     []navItem
	Home    string

	// Screen is the *screens.Load of the page's data.
	Screen any
	Form   formState

	CanEdit        bool
	ExportsEnabled bool
	DefaultPeriod  string
	GoogleClientID string
	Error          string
}

// Param reads one value of the request query, to refill the filter inputs.
func (p *pageData) Param(name string) string {
	v, _ := url.ParseQuery(p.Query)
	return v.Get(name)
}

// URL is the request path with its query, the target of a retry.
func (p *pageData) URL() string {
	if p.Query == "" {
		return p.Path
	}
	return p.Path + "?" + p.Query
}

// formState carries submitted values and per-field messages back to a form.
type formState struct {
	Action  string
	Values  url.Values
	Errors  map[string]string
	Message string
}

func (f formState) Value(key string) string { return f.Values.Get(key) }
func (f formState) Error(key string) string { return f.Errors[key] }

// FieldMessages lists field errors in a stable order, form-level message excluded.
func (f formState) FieldMessages() []string {
	keys := make([]string, 0, len(f.Errors))
	for k := range f.Errors {
		if k != "_" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fieldLabel(k)+": "+f.Errors[k])
	}
	return out
}

var fieldLabels = map[string]string{
	"nombre":                 "Nombre",
	"primer_apellido":        "Primer apellido",
	"segundo_apellido":       "Segundo apellido",
	"correo":                 "Correo",
	"telefono":               "Teléfono",
	"no_residencia":          "No. de casa",
	"titulo":                 "Título",
	"mensaje":                "Mensaje",
	"destinatarios":          "Destinatarios",
	"cve_area":               "Área",
	"id_persona_solicitante": "Residente",
	"fecha_reserva":          "Fecha",
	"hora_inicio":            "Hora de inicio",
	"hora_fin":               "Hora de fin",
	"password":               "Contraseña",
	"id_token":               "Token de Google",
}

func fieldLabel(key string) string {
	if l, ok := fieldLabels[key]; ok {
		return l
	}
	return key
}
