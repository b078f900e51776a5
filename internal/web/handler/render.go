package handler

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/apl-auction/internal/web/middleware"
	"github.com/mcoot/apl-auction/internal/web/templates/layout"
	"github.com/mcoot/apl-auction/internal/web/templates/pages"
)

// pageData fills the shared chrome from the request context
func pageData(r *http.Request, title string) layout.PageData {
	return layout.PageData{
		Title:         title,
		Flash:         middleware.GetFlash(r.Context()),
		Authenticated: middleware.GetSession(r.Context()) != nil,
	}
}

func render(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = page.Render(r.Context(), w)
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render(w, r, status, pages.ErrorPage(pages.ErrorData{
		PageData: pageData(r, "Error"),
		Status:   status,
		Message:  message,
	}))
}

// redirectWithFlash sets a toast and sends the browser to location
func redirectWithFlash(w http.ResponseWriter, r *http.Request, location, flashType, message string) {
	middleware.SetFlash(w, flashType, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// safeNext only allows local redirect targets
func safeNext(next, fallback string) string {
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return fallback
}
