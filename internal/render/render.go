// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for both the public
// site and the admin interface. Templates are embedded at compile time;
// each page template is paired with its section's base layout.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blogpress/internal/middleware"
	"blogpress/internal/session"
)

//go:embed templates/site/*.html templates/admin/*.html
var templatesFS embed.FS

// flashCookie carries a one-time notification across a redirect.
const flashCookie = "bp_flash"

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error"
	Message string
}

// PageData holds all data passed to templates.
type PageData struct {
	Title     string         // Page title for the <title> tag
	Section   string         // Active nav section (e.g., "posts", "comments")
	SiteName  string         // Filled in by the renderer
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Renderer handles template parsing and execution.
type Renderer struct {
	siteName  string
	templates map[string]*template.Template
}

// standaloneTemplates render as full HTML pages without the base layout.
var standaloneTemplates = map[string]bool{
	"admin/login":      true,
	"admin/2fa_setup":  true,
	"admin/2fa_verify": true,
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Template names are "<section>/<page>", e.g. "site/home".
func New(siteName string) (*Renderer, error) {
	r := &Renderer{
		siteName:  siteName,
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"fmtDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
		"activeClass": func(current, target string) string {
			if current == target {
				return "active"
			}
			return ""
		},
	}

	for _, section := range []string{"site", "admin"} {
		entries, err := templatesFS.ReadDir("templates/" + section)
		if err != nil {
			return nil, fmt.Errorf("read embedded templates: %w", err)
		}

		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == "base.html" {
				continue
			}

			key := section + "/" + strings.TrimSuffix(name, ".html")

			var tmpl *template.Template
			var parseErr error
			if standaloneTemplates[key] {
				tmpl, parseErr = template.New(name).Funcs(funcMap).ParseFS(
					templatesFS, "templates/"+section+"/"+name,
				)
			} else {
				tmpl, parseErr = template.New("base.html").Funcs(funcMap).ParseFS(
					templatesFS,
					"templates/"+section+"/base.html",
					"templates/"+section+"/"+name,
				)
			}
			if parseErr != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
			}

			r.templates[key] = tmpl
		}
	}

	return r, nil
}

// Page renders a template by its "<section>/<page>" key. The CSRF token,
// session, and any pending flash messages are injected from the request.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.SiteName = rn.siteName
	data.CSRFToken = middleware.GetCSRFToken(r)
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}
	data.Flashes = append(popFlash(w, r), data.Flashes...)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name[strings.IndexByte(name, '/')+1:] + ".html"
	}

	if err := tmpl.ExecuteTemplate(w, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

// SetFlash stores a one-time notification that the next rendered page
// will display. Survives a redirect via a short-lived cookie.
func SetFlash(w http.ResponseWriter, flashType, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(flashType + "|" + message),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(w http.ResponseWriter, r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	flashType, message, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}
	return []Flash{{Type: flashType, Message: message}}
}
