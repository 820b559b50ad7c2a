package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wazivo/internal/config"
	"wazivo/internal/errors"
	"wazivo/internal/utils"
)

type recordingDecoder struct {
	mimeType string
	data     []byte
	text     string
	err      error
}

func (d *recordingDecoder) Extract(_ context.Context, data []byte, mimeType string) (string, error) {
	d.data = data
	d.mimeType = mimeType
	return d.text, d.err
}

func directConfig() config.DirectConfig {
	return config.DirectConfig{Enabled: true, Timeout: 5 * time.Second, MaxRedirects: 5, MaxBytes: 1024}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed
}

func TestIsDocumentURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/cv.pdf":            true,
		"https://example.com/CV.PDF":            true,
		"https://example.com/cv.docx":           true,
		"https://example.com/cv.doc":            true,
		"https://example.com/cv.pdf?dl=1":       true,
		"https://example.com/cv.pdfx":           false,
		"https://example.com/in/someone":        false,
		"https://example.com/pdf/viewer?id=1":   false,
		"https://example.com/download?file=a.b": false,
	}

	for raw, expected := range tests {
		assert.Equal(t, expected, IsDocumentURL(mustParse(t, raw)), raw)
	}
}

func TestDirectStrategyNotApplicableForPages(t *testing.T) {
	d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, &recordingDecoder{})

	_, err := d.Fetch(context.Background(), mustParse(t, "https://example.com/in/someone"))
	assert.ErrorIs(t, err, ErrNotApplicable)
}

func TestDirectStrategyDownloadsAndDecodes(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer server.Close()

	decoder := &recordingDecoder{text: "Jane Doe, Go engineer"}
	d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, decoder)

	text, err := d.Fetch(context.Background(), mustParse(t, server.URL+"/files/cv.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe, Go engineer", text)
	assert.Equal(t, utils.MIMEPDF, decoder.mimeType)
	assert.Equal(t, "%PDF-1.4 fake", string(decoder.data))
	assert.Equal(t, config.DefaultUserAgent, gotUA)
}

func TestDirectStrategyResolvesMIMEFromExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("PK docx bytes"))
	}))
	defer server.Close()

	decoder := &recordingDecoder{text: "ok"}
	d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, decoder)

	_, err := d.Fetch(context.Background(), mustParse(t, server.URL+"/cv.docx"))
	require.NoError(t, err)
	assert.Equal(t, utils.MIMEDOCX, decoder.mimeType)
}

func TestDirectStrategyRejectsNonOKAndNonDocuments(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		path        string
	}{
		{"not found", http.StatusNotFound, "text/html", "/cv.pdf"},
		{"forbidden", http.StatusForbidden, "application/pdf", "/cv.pdf"},
		{"server error", http.StatusBadGateway, "application/pdf", "/cv.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			decoder := &recordingDecoder{text: "never"}
			d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, decoder)

			_, err := d.Fetch(context.Background(), mustParse(t, server.URL+tt.path))
			require.Error(t, err)
			assert.Contains(t, err.Error(), fmt.Sprint(tt.status))
			assert.Nil(t, decoder.data, "decoder must not run")
		})
	}
}

func TestDirectStrategyRejectsHTMLServedAtDocumentURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>login</html>"))
	}))
	defer server.Close()

	d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, &recordingDecoder{})

	// Only the query names a document, so neither header nor path yields a type.
	_, err := d.Fetch(context.Background(), mustParse(t, server.URL+"/view?name=cv.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF or Word document")
}

func TestDirectStrategyRedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again/cv.pdf", http.StatusFound)
	}))
	defer server.Close()

	d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, &recordingDecoder{})

	_, err := d.Fetch(context.Background(), mustParse(t, server.URL+"/cv.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 5 redirects")
}

func TestDirectStrategySizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer server.Close()

	d := NewDirectStrategy(directConfig(), config.DefaultUserAgent, &recordingDecoder{})

	_, err := d.Fetch(context.Background(), mustParse(t, server.URL+"/cv.pdf"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileTooLarge))
}

func readerConfig(baseURL string) config.ReaderConfig {
	return config.ReaderConfig{
		Enabled:         true,
		BaseURL:         baseURL + "/",
		APIKey:          "reader-token",
		Timeout:         5 * time.Second,
		DynamicTimeout:  9 * time.Second,
		MaxChars:        15000,
		RemoveSelectors: []string{"nav", "footer"},
	}
}

func TestReaderStrategySendsRenderHints(t *testing.T) {
	var got http.Header
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(strings.Repeat("Experienced Go engineer. ", 40)))
	}))
	defer server.Close()

	r := NewReaderStrategy(readerConfig(server.URL), config.DefaultUserAgent, errors.NewDiscardLogger())

	text, err := r.Fetch(context.Background(), mustParse(t, "https://www.linkedin.com/in/someone"))
	require.NoError(t, err)
	assert.Contains(t, text, "Experienced Go engineer.")

	assert.Equal(t, "/https://www.linkedin.com/in/someone", gotPath)
	assert.Equal(t, "text", got.Get("X-Return-Format"))
	assert.Equal(t, "nav, footer", got.Get("X-Remove-Selector"))
	assert.Equal(t, "Bearer reader-token", got.Get("Authorization"))
	assert.Equal(t, "main", got.Get("X-Wait-For-Selector"), "dynamic platforms get a wait hint")
	assert.Equal(t, "9", got.Get("X-Timeout"), "dynamic platforms get the extended timeout")
}

func TestReaderStrategyRegularPageUsesBaseTimeout(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(strings.Repeat("portfolio text ", 100)))
	}))
	defer server.Close()

	r := NewReaderStrategy(readerConfig(server.URL), config.DefaultUserAgent, errors.NewDiscardLogger())

	_, err := r.Fetch(context.Background(), mustParse(t, "https://jane.dev/about"))
	require.NoError(t, err)
	assert.Equal(t, "5", got.Get("X-Timeout"))
	assert.Empty(t, got.Get("X-Wait-For-Selector"))
}

func TestReaderStrategyTruncates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("é", 20000)))
	}))
	defer server.Close()

	r := NewReaderStrategy(readerConfig(server.URL), config.DefaultUserAgent, errors.NewDiscardLogger())

	text, err := r.Fetch(context.Background(), mustParse(t, "https://jane.dev/cv"))
	require.NoError(t, err)
	assert.Equal(t, 15000, utils.RuneLen(text))
}

func TestReaderStrategyCleansHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><nav>Menu</nav><main><h1>Jane Doe</h1><p>` +
			strings.Repeat("Built distributed systems in Go. ", 30) + `</p></main><footer>Copyright</footer></body></html>`))
	}))
	defer server.Close()

	r := NewReaderStrategy(readerConfig(server.URL), config.DefaultUserAgent, errors.NewDiscardLogger())

	text, err := r.Fetch(context.Background(), mustParse(t, "https://jane.dev/cv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Jane Doe"))
	assert.NotContains(t, text, "Menu")
	assert.NotContains(t, text, "Copyright")
}

func TestReaderStrategyNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	r := NewReaderStrategy(readerConfig(server.URL), config.DefaultUserAgent, errors.NewDiscardLogger())

	_, err := r.Fetch(context.Background(), mustParse(t, "https://jane.dev/cv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestLinkedInLoginWallEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Sign in to LinkedIn\nJoin now to see the full profile."))
	}))
	defer server.Close()

	cfg := config.Defaults()
	cfg.Fetch.Reader = readerConfig(server.URL)
	chain := New(cfg, &recordingDecoder{}, errors.NewDiscardLogger())

	_, err := chain.FetchText(context.Background(), "https://linkedin.com/in/someone")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeLoginRequired))

	classified := errors.Classify(err)
	assert.Equal(t, http.StatusBadRequest, classified.Status)
	assert.Contains(t, classified.Message, "Save to PDF")
}

func TestIsLoginWall(t *testing.T) {
	assert.True(t, IsLoginWall("Please log in to continue"))
	assert.True(t, IsLoginWall("Jane Doe\nSign in to view Jane's full profile\nJoin now"))
	assert.True(t, IsLoginWall("linkedin.com/authwall?trk=public_profile"))
	assert.False(t, IsLoginWall(""))
	assert.False(t, IsLoginWall("Jane Doe\nSoftware engineer"))
	assert.False(t, IsLoginWall("Sign up for our newsletter"), "a single prompt is not a wall")

	cv := "Jane Doe\nSenior Go Engineer, Berlin\n\n" +
		"Experience\n" +
		"Acme Payments (2019-2024): Designed the OAuth login service handling 2M sign-ins a day. " +
		"Moved session storage to Redis and cut p99 latency by 40%. Led a team of four engineers.\n" +
		"Beta Labs (2016-2019): Built gRPC services in Go and PostgreSQL, " +
		"owned the CI pipeline and on-call rotation.\n\n" +
		"Skills\nGo, PostgreSQL, Redis, Kubernetes, gRPC, OAuth 2.0, Terraform\n\n" +
		"Education\nBSc Computer Science, TU Munich"
	require.Greater(t, utils.RuneLen(cv), 200)
	require.Less(t, utils.RuneLen(cv), loginWallMaxLength)
	assert.False(t, IsLoginWall(cv), "a short CV that mentions login work is real content")

	long := strings.Repeat("Built the login service for a bank. ", 40)
	assert.False(t, IsLoginWall(long), "long pages are real content even when they mention login")
}

func TestReadableText(t *testing.T) {
	html := `<html><body>
		<header>Site header</header>
		<div class="cookie-banner">We use cookies</div>
		<article><h2>Experience</h2><ul><li>Go</li><li>Kubernetes</li></ul></article>
		<div class="promo">Buy now</div>
	</body></html>`

	text, err := ReadableText(html, ".promo")
	require.NoError(t, err)
	assert.Contains(t, text, "Experience")
	assert.Contains(t, text, "Go\nKubernetes")
	assert.NotContains(t, text, "Site header")
	assert.NotContains(t, text, "cookies")
	assert.NotContains(t, text, "Buy now")
}
