package handler

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/pls-platform/dashboard/internal/core/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	viewLogin  = "login"
	viewShell  = "shell"
	viewHeader = "header"
)

// Renderer renders the embedded page templates for echo's c.Render.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type loginPage struct {
	Title     string
	Error     string
	Username  string
	CSRFToken string
}

type shellPage struct {
	Title     string
	View      service.ShellView
	CSRFToken string
}
