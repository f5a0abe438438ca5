package render

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io/fs"
	"net/http"

	"safetrip/pkg/e"
)

//go:embed templates/*.html
var templates embed.FS

type Renderer struct {
	t *template.Template
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(templates, "templates/*.html")
}

func NewRendererFS(fsys fs.FS, patterns ...string) (*Renderer, error) {
	t, err := template.ParseFS(fsys, patterns...)
	if err != nil {
		return nil, err
	}
	return &Renderer{t: t}, nil
}

func (r *Renderer) Render(w http.ResponseWriter, code int, name string, data any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	return r.t.ExecuteTemplate(w, name, data)
}

func JSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(v)
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrInvalidCoordinates):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, e.ErrConflict), errors.Is(err, e.ErrInvalidState), errors.Is(err, e.ErrUniqueViolation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": ...}. Internal errors are not echoed back.
func Error(w http.ResponseWriter, err error) int {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	_ = JSON(w, status, map[string]string{"error": msg})
	return status
}
