package core

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-barry/greetform/form"
	"github.com/go-barry/greetform/greeter"
	"github.com/rs/zerolog"
)

// Form field names posted by the greeting page.
const (
	FieldName     = "name"
	FieldGreeting = "greeting"
)

type Route struct {
	URLPattern *regexp.Regexp
	ParamKeys  []string
	HTMLPath   string
	FilePath   string
	Key        string
}

type RuntimeContext struct {
	Env     string
	Greeter greeter.Greeter
	Logger  zerolog.Logger
}

// PageData is what route templates execute against.
type PageData struct {
	form.PageState
	Params     map[string]string
	Env        string
	Dev        bool
	ReloadPath string

	// GreetTimeout bounds the browser handler's calls, as a Go duration
	// string. Empty means unbounded.
	GreetTimeout string
}

type Router struct {
	config  Config
	env     string
	greeter greeter.Greeter
	logger  zerolog.Logger
	routes  []Route
	index   *Route
}

func NewRouter(config Config, rc RuntimeContext) *Router {
	g := rc.Greeter
	if g == nil {
		g = greeter.NewBackend(config.GreetFormat)
	}
	r := &Router{
		config:  config,
		env:     rc.Env,
		greeter: g,
		logger:  rc.Logger,
	}
	r.loadRoutes()
	return r
}

func (r *Router) Routes() []Route {
	return r.routes
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.Trim(req.URL.Path, "/")

	if "/"+path == greeter.GreetPath {
		r.handleAPI(w, req)
		return
	}

	route, params, err := r.Match(path)
	if IsNotFoundError(err) {
		http.NotFound(w, req)
		return
	}
	r.servePage(w, req, route, params)
}

// Match finds the route for a slash-trimmed request path. It returns
// ErrNotFound when no route matches.
func (r *Router) Match(path string) (Route, map[string]string, error) {
	if path == "" {
		if r.index == nil {
			return Route{}, nil, ErrNotFound
		}
		return *r.index, map[string]string{}, nil
	}

	for _, route := range r.routes {
		if route.Key == "" {
			continue
		}
		if matches := route.URLPattern.FindStringSubmatch(path); matches != nil {
			params := map[string]string{}
			for i, key := range route.ParamKeys {
				params[key] = matches[i+1]
			}
			return route, params, nil
		}
	}

	return Route{}, nil, ErrNotFound
}

func (r *Router) servePage(w http.ResponseWriter, req *http.Request, route Route, params map[string]string) {
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		r.renderGet(w, req, route, params)
	case http.MethodPost:
		r.renderSubmit(w, req, route, params)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (r *Router) cacheable(params map[string]string) bool {
	return r.config.CacheEnabled && r.env == "prod" && len(params) == 0
}

func (r *Router) renderGet(w http.ResponseWriter, req *http.Request, route Route, params map[string]string) {
	cacheKey := route.Key
	if cacheKey == "" {
		cacheKey = "index"
	}

	if r.cacheable(params) {
		if AcceptsGzip(req) {
			if gzPath, ok := CachedGzipPath(r.config, cacheKey); ok {
				r.setPageHeaders(w, route, "HIT")
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Set("Vary", "Accept-Encoding")
				http.ServeFile(w, req, gzPath)
				return
			}
		}
		if html, ok := GetCachedHTML(r.config, cacheKey); ok {
			r.setPageHeaders(w, route, "HIT")
			w.Write(html)
			return
		}
	}

	html, err := r.render(route, r.pageData(form.PageState{}, params))
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if r.cacheable(params) {
		if err := SaveCachedHTML(r.config, cacheKey, html); err != nil {
			r.logger.Warn().Err(err).Str("route", cacheKey).Msg("cache_save_failed")
		}
	}

	r.setPageHeaders(w, route, "MISS")
	w.Write(html)
}

// renderSubmit runs the greeting form on the server for clients without
// WebAssembly and answers with the same page, updated.
func (r *Router) renderSubmit(w http.ResponseWriter, req *http.Request, route Route, params map[string]string) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Bad form: "+err.Error(), http.StatusBadRequest)
		return
	}

	view := form.NewPageView(req.PostForm.Get(FieldName), req.PostForm.Get(FieldGreeting))
	h := form.New(r.greeter, view,
		form.WithTimeout(r.config.GreetTimeout),
		form.WithLogger(r.logger.With().Str("request_id", req.Header.Get(RequestIDHeader)).Logger()),
	)

	status := http.StatusOK
	if _, err := h.Handle(req.Context(), form.NoEvent); err != nil {
		status = http.StatusBadGateway
	}

	html, err := r.render(route, r.pageData(view.State(), params))
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	r.setPageHeaders(w, route, "BYPASS")
	w.WriteHeader(status)
	w.Write(html)
}

func (r *Router) pageData(state form.PageState, params map[string]string) PageData {
	return PageData{
		PageState:  state,
		Params:     params,
		Env:        r.env,
		Dev:        r.env == "dev",
		ReloadPath: ReloadPath,

		GreetTimeout: greetTimeoutAttr(r.config.GreetTimeout),
	}
}

func greetTimeoutAttr(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return d.String()
}

func (r *Router) render(route Route, data PageData) ([]byte, error) {
	page, err := ParsePage(r.config, r.env, route.HTMLPath)
	if err != nil {
		return nil, err
	}
	return page.Execute(data)
}

func (r *Router) setPageHeaders(w http.ResponseWriter, route Route, cache string) {
	if r.config.DebugHeaders {
		w.Header().Set("X-Greetform-Route", route.FilePath)
		w.Header().Set("X-Greetform-Cache", cache)
		w.Header().Set("X-Greetform-Rendered", time.Now().UTC().Format(time.RFC3339))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func (r *Router) loadRoutes() {
	root := filepath.Clean(r.config.RoutesDir)

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.IsDir() {
			return nil
		}

		htmlPath := filepath.Join(path, "index.html")
		if _, err := os.Stat(htmlPath); err != nil {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if rel == "." {
			rel = ""
		}

		paramKeys := []string{}
		pattern := ""
		if rel != "" {
			for _, part := range strings.Split(rel, "/") {
				if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") {
					paramKeys = append(paramKeys, part[1:len(part)-1])
					pattern += "/([^/]+)"
				} else {
					pattern += "/" + regexp.QuoteMeta(part)
				}
			}
		}

		route := Route{
			URLPattern: regexp.MustCompile("^" + strings.TrimPrefix(pattern, "/") + "$"),
			ParamKeys:  paramKeys,
			HTMLPath:   htmlPath,
			FilePath:   path,
			Key:        rel,
		}
		r.routes = append(r.routes, route)
		return nil
	})

	for i := range r.routes {
		if r.routes[i].Key == "" {
			r.index = &r.routes[i]
		}
	}
}

func AcceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
