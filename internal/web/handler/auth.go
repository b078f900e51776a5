package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/apl-auction/internal/services/auction"
	"github.com/mcoot/apl-auction/internal/services/auth"
	"github.com/mcoot/apl-auction/internal/web/middleware"
	"github.com/mcoot/apl-auction/internal/web/templates/pages"
)

// AuthHandler handles admin login and logout
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if middleware.GetSession(r.Context()) != nil {
		// Already logged in
		http.Redirect(w, r, safeNext(next, auction.PathAdmin), http.StatusSeeOther)
		return
	}
	renderLogin(w, r, http.StatusOK, next, "")
}

func renderLogin(w http.ResponseWriter, r *http.Request, status int, next, errMsg string) {
	render(w, r, status, pages.Login(pages.LoginData{
		PageData: pageData(r, "Login"),
		Next:     next,
		Error:    errMsg,
	}))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderLogin(w, r, http.StatusBadRequest, "", "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if username == "" || password == "" {
		renderLogin(w, r, http.StatusBadRequest, next, "Username and password are required")
		return
	}

	session, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		renderLogin(w, r, http.StatusUnauthorized, next, "Invalid username or password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	redirectWithFlash(w, r, safeNext(next, auction.PathAdmin), middleware.FlashSuccess, "Welcome back, "+session.Username+"!")
}

// Logout ends the admin session
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.authService.InvalidateSession(cookie.Value)
	}

	// Clear session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	redirectWithFlash(w, r, "/login", middleware.FlashInfo, "You have been logged out")
}
