// Package web renders the public blog pages.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"cecilia/internal/content"
	"cecilia/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// ListPage is the data for /blog.
type ListPage struct {
	Posts      []models.PostSummary
	Total      int64
	Page       int
	TotalPages int
}

func (p ListPage) PrevPage() int {
	if p.Page > 1 {
		return p.Page - 1
	}
	return 0
}

func (p ListPage) NextPage() int {
	if p.Page < p.TotalPages {
		return p.Page + 1
	}
	return 0
}

// PostPage is the data for /blog/{id}/{slug}.
type PostPage struct {
	Post      *models.Post
	Body      template.HTML
	Canonical string
}

// Pages executes the embedded templates.
type Pages struct {
	tmpl    *template.Template
	baseURL string
}

// New parses the embedded templates. baseURL prefixes canonical links.
func New(baseURL string) (*Pages, error) {
	printer := message.NewPrinter(language.BrazilianPortuguese)

	funcs := template.FuncMap{
		"date":    formatDate,
		"postURL": PostPath,
		"count": func(n int64) string {
			if n == 1 {
				return "1 artigo"
			}
			return printer.Sprintf("%d artigos", n)
		},
	}

	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Pages{tmpl: tmpl, baseURL: baseURL}, nil
}

// PostPath is the canonical path of a post.
func PostPath(id uint, urlName string) string {
	return fmt.Sprintf("/blog/%d/%s", id, urlName)
}

func (p *Pages) List(w io.Writer, page ListPage) error {
	return p.tmpl.ExecuteTemplate(w, "list.html", page)
}

// Post renders the article body through the content renderer.
func (p *Pages) Post(w io.Writer, post *models.Post) error {
	body, err := content.HTML(content.Render(post.Content))
	if err != nil {
		return fmt.Errorf("render post %d: %w", post.ID, err)
	}
	return p.tmpl.ExecuteTemplate(w, "post.html", PostPage{
		Post:      post,
		Body:      body,
		Canonical: p.baseURL + PostPath(post.ID, post.URLName),
	})
}

func (p *Pages) NotFound(w io.Writer) error {
	return p.tmpl.ExecuteTemplate(w, "notfound.html", nil)
}

// formatDate writes t as "2 de março de 2024".
func formatDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}
