package template

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ghaggin/coachportal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"tmpl/base.html":  {Data: []byte(`<title>{{.PageTitle}}</title>{{block "head" .}}<default-head>{{end}}|{{template "content" .}}`)},
		"tmpl/home.html":  {Data: []byte(`{{define "head"}}<meta>{{end}}{{define "content"}}hi {{.Page}}{{end}}`)},
		"tmpl/plain.html": {Data: []byte(`{{define "content"}}plain{{end}}`)},
		"tmpl/partials/when.html": {
			Data: []byte(`{{define "when"}}{{day .}} {{clock .}}{{end}}`),
		},
	}
}

func TestRender(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	r, err := New(testFS())
	require.NoError(err)

	w := httptest.NewRecorder()
	err = r.Render(w, http.StatusTeapot, "home.html", &Data{PageTitle: "Home", Page: "there"})
	require.NoError(err)

	assert.Equal(http.StatusTeapot, w.Code)
	assert.Equal("text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal("<title>Home</title><meta>|hi there", w.Body.String())

	w = httptest.NewRecorder()
	require.NoError(r.Render(w, http.StatusOK, "plain.html", &Data{}))
	assert.Equal("<title></title><default-head>|plain", w.Body.String())
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, r.Render(w, http.StatusOK, "missing.html", nil))
	assert.Empty(t, w.Body.String())
}

func TestPartial(t *testing.T) {
	r, err := New(testFS())
	require.NoError(t, err)

	at := time.Date(2025, time.March, 4, 15, 30, 0, 0, time.Local)

	buf := &bytes.Buffer{}
	require.NoError(t, r.Partial(buf, "when", at))
	assert.Equal(t, "Tuesday, March 4, 2025 3:30 PM", buf.String())

	assert.Error(t, r.Partial(&bytes.Buffer{}, "nope", nil))
}

func TestNew_EmbeddedTemplates(t *testing.T) {
	r, err := New(web.FS())
	require.NoError(t, err)

	for _, page := range []string{
		"login.html",
		"survey.html",
		"dashboard.html",
		"check_email.html",
		"email_confirmation.html",
		"loading.html",
		"not_found.html",
	} {
		assert.Contains(t, r.pages, page)
	}
	assert.NotContains(t, r.pages, "base.html")
}
