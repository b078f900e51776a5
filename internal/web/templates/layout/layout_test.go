package layout

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderBase(t *testing.T, data PageData) string {
	t.Helper()
	var buf bytes.Buffer
	ctx := templ.WithChildren(context.Background(), templ.Raw(`<p id="body">content</p>`))
	require.NoError(t, Base(data).Render(ctx, &buf))
	return buf.String()
}

func TestBaseShowsFlash(t *testing.T) {
	html := renderBase(t, PageData{Title: "Panel", Flash: &FlashMessage{Type: "error", Message: "Failed to sell player"}})

	assert.Contains(t, html, `class="toast toast-error"`)
	assert.Contains(t, html, "Failed to sell player")
	assert.Contains(t, html, "<title>Panel | APL Auction</title>")
	assert.Contains(t, html, `<main><p id="body">content</p></main>`)
}

func TestBaseNavigation(t *testing.T) {
	tests := []struct {
		name    string
		data    PageData
		showNav bool
	}{
		{"signed out", PageData{Title: "Login"}, false},
		{"signed in", PageData{Title: "Admin", Authenticated: true}, true},
		{"display screen", PageData{Title: "Arjun", Authenticated: true, Fullscreen: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderBase(t, tt.data)
			assert.Equal(t, tt.showNav, bytes.Contains([]byte(html), []byte("<nav>")))
		})
	}
}

func TestBaseEscapesTitle(t *testing.T) {
	html := renderBase(t, PageData{Title: "<b>Arjun</b>"})

	assert.Contains(t, html, "<title>&lt;b&gt;Arjun&lt;/b&gt; | APL Auction</title>")
}
