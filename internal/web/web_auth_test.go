package web_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootRedirectsToAdmin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
}

func TestProtectedRouteRedirectsToLogin(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/admin/auction/panel")

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login?next=%2Fadmin%2Fauction%2Fpanel", rr.Header().Get("Location"))
}

func TestLoginPageRenders(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/login?next=/admin/teams")
	assert.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "form#login-form")
	next, _ := doc.Find("input[name='next']").Attr("value")
	assert.Equal(t, "/admin/teams", next)
	// Navigation is only shown to signed-in admins
	assertNotContainsElement(t, doc, "nav")
}

func TestLoginRedirectsToNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {adminUsername}, "password": {adminPassword}, "next": {"/admin/teams"}}
	rr := ts.post("/login", form)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/teams", rr.Header().Get("Location"))
	assert.True(t, ts.cookies.hasSession())

	rr = ts.followRedirect(rr)
	assert.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "#flash", "Welcome back, admin!")
	assertContainsElement(t, doc, "nav")
}

func TestLoginIgnoresOffsiteNext(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {adminUsername}, "password": {adminPassword}, "next": {"//evil.example.com"}}
	rr := ts.post("/login", form)

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newWebTestServer(t)

	form := url.Values{"username": {adminUsername}, "password": {"not-the-password"}}
	rr := ts.post("/login", form)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, ts.cookies.hasSession())
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "p.error", "Invalid username or password")
}

func TestLoginMissingFields(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/login", url.Values{"username": {adminUsername}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsText(t, doc, "p.error", "required")
}

func TestLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()

	rr := ts.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.False(t, ts.cookies.hasSession())
	assert.Equal(t, 0, ts.app.AuthService.SessionCount())

	rr = ts.get("/admin")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestLoggedInUserSkipsLoginPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.login()

	rr := ts.get("/login")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
}
