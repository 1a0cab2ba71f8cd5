package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-barry/greetform/greeter"
	"github.com/rs/zerolog"
)

const testGreetPage = `<!-- layout: layout.html -->
{{ define "content" }}<form method="post">
<input id="name" name="name" value="{{ .Name }}">
<input type="hidden" name="greeting" value="{{ .Greeting }}">
<button type="submit"{{ if .Pending }} disabled{{ end }}>Greet</button>
</form>
<section id="greeting">{{ .Greeting }}</section>
{{ if .Error }}<p id="status">{{ .Error }}</p>{{ end }}{{ end }}`

const testLayout = `{{ define "layout" }}<html><body>{{ template "content" . }}{{ template "footer" . }}</body></html>{{ end }}`

func setupRouterTestEnv(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()

	writeTempFile(t, root, "routes/index.html", testGreetPage)
	writeTempFile(t, root, "routes/about/index.html", `{{ define "content" }}<h1>About</h1>{{ end }}<!-- no layout -->`)
	writeTempFile(t, root, "routes/people/[who]/index.html", `<p>{{ .Params.who }}</p>`)
	writeTempFile(t, root, "layout.html", testLayout)
	writeTempFile(t, root, "components/footer.html", `{{ define "footer" }}<footer>greetform</footer>{{ end }}`)

	return Config{
		OutputDir: filepath.Join(root, "cache"),
		RoutesDir: filepath.Join(root, "routes"),
		PublicDir: filepath.Join(root, "public"),
	}
}

func newTestRouter(t *testing.T, cfg Config, env string, g greeter.Greeter) *Router {
	t.Helper()
	return NewRouter(cfg, RuntimeContext{Env: env, Greeter: g, Logger: zerolog.Nop()})
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRouter_LoadsRoutes(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	keys := map[string]bool{}
	for _, r := range router.Routes() {
		keys[r.Key] = true
	}
	for _, want := range []string{"", "about", "people/[who]"} {
		if !keys[want] {
			t.Errorf("expected route %q, got %v", want, keys)
		}
	}
}

func TestRouter_ServesIndexForm(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<input id="name" name="name" value="">`) {
		t.Errorf("expected empty name field, got: %s", body)
	}
	if !strings.Contains(body, "<footer>greetform</footer>") {
		t.Errorf("expected component to render, got: %s", body)
	}
	if strings.Contains(body, "disabled") {
		t.Errorf("expected enabled button, got: %s", body)
	}
}

func TestRouter_ServesParamRoute(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/people/ada", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>ada</p>") {
		t.Errorf("expected param in body, got: %s", rec.Body.String())
	}
}

func TestRouter_Returns404ForUnknownRoute(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/not-found", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_RejectsUnsupportedMethod(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestRouter_SubmitRendersGreeting(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{"name": {"Ada"}}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<section id="greeting">Hello, Ada!</section>`) {
		t.Errorf("expected greeting, got: %s", body)
	}
	if strings.Contains(body, "disabled") {
		t.Errorf("expected button re-enabled, got: %s", body)
	}
}

func TestRouter_SubmitEmptyNameStillGreets(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	var calls []string
	g := greeter.Func(func(ctx context.Context, name string) (string, error) {
		calls = append(calls, name)
		return "Hello, " + name + "!", nil
	})
	router := newTestRouter(t, cfg, "dev", g)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{"name": {""}}))

	if len(calls) != 1 || calls[0] != "" {
		t.Errorf("expected exactly one call with empty name, got %q", calls)
	}
}

func TestRouter_SubmitFailureKeepsPreviousGreeting(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	g := greeter.Func(func(ctx context.Context, name string) (string, error) {
		return "", errors.New("actor unreachable")
	})
	router := newTestRouter(t, cfg, "dev", g)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{"name": {"Ada"}, "greeting": {"Hello, Bob!"}}))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<section id="greeting">Hello, Bob!</section>`) {
		t.Errorf("expected previous greeting kept, got: %s", body)
	}
	if !strings.Contains(body, "actor unreachable") {
		t.Errorf("expected error shown, got: %s", body)
	}
	if strings.Contains(body, "disabled") {
		t.Errorf("expected button re-enabled after failure, got: %s", body)
	}
}

func TestRouter_DebugHeaders(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	cfg.DebugHeaders = true
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	if got := rec.Header().Get("X-Greetform-Route"); got != filepath.Join(cfg.RoutesDir, "about") {
		t.Errorf("unexpected route header %q", got)
	}
	if got := rec.Header().Get("X-Greetform-Cache"); got != "MISS" {
		t.Errorf("unexpected cache header %q", got)
	}
}

func TestRouter_ProdCachesIndex(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	cfg.CacheEnabled = true
	cfg.DebugHeaders = true
	router := newTestRouter(t, cfg, "prod", nil)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Header().Get("X-Greetform-Cache") != "MISS" {
		t.Fatalf("expected first render to miss")
	}

	if _, ok := GetCachedHTML(cfg, "index"); !ok {
		t.Fatal("expected index to be cached")
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Header().Get("X-Greetform-Cache") != "HIT" {
		t.Errorf("expected second render to hit cache")
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("cached body differs from rendered body")
	}

	gz := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(gz, req)
	if gz.Header().Get("Content-Encoding") != "gzip" {
		t.Errorf("expected gzip response")
	}
}

func TestRouter_TemplateErrorReturns500(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	if err := os.WriteFile(filepath.Join(cfg.RoutesDir, "about", "index.html"), []byte(`{{ if }}`), 0644); err != nil {
		t.Fatal(err)
	}
	router := newTestRouter(t, cfg, "dev", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Result().Body)
	if !strings.Contains(string(body), "Template error") {
		t.Errorf("expected template error, got %s", body)
	}
}

func TestAcceptsGzip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	if !AcceptsGzip(req) {
		t.Error("expected true for Accept-Encoding with gzip")
	}

	req.Header.Set("Accept-Encoding", "br")
	if AcceptsGzip(req) {
		t.Error("expected false for Accept-Encoding without gzip")
	}
}

func TestRouter_Match(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	router := newTestRouter(t, cfg, "dev", nil)

	route, params, err := router.Match("people/grace")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Key != "people/[who]" || params["who"] != "grace" {
		t.Errorf("unexpected match %q %v", route.Key, params)
	}

	if _, _, err := router.Match("nope/nope"); !IsNotFoundError(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRouter_PageCarriesGreetTimeout(t *testing.T) {
	cfg := setupRouterTestEnv(t)
	writeTempFile(t, filepath.Dir(cfg.RoutesDir), "routes/wasm/index.html", `<script data-timeout="{{ .GreetTimeout }}"></script>`)

	for _, tt := range []struct {
		timeout time.Duration
		want    string
	}{
		{3 * time.Second, `data-timeout="3s"`},
		{0, `data-timeout=""`},
	} {
		cfg.GreetTimeout = tt.timeout
		router := newTestRouter(t, cfg, "dev", nil)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wasm", nil))

		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("timeout %v: expected %s, got %s", tt.timeout, tt.want, rec.Body.String())
		}
	}
}
