// Package greetform serves the greeting page: a server-rendered form whose
// submission handler runs in the browser as WebAssembly, with the same handler
// on the server as a fallback for clients without it.
package greetform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-barry/greetform/core"
	"github.com/go-barry/greetform/greeter"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type RuntimeConfig struct {
	Env         string
	EnableCache bool
	Port        int
	ConfigPath  string
}

const shutdownTimeout = 5 * time.Second

var listen = net.Listen

// Start serves until ctx is cancelled or the listener fails.
func Start(ctx context.Context, cfg RuntimeConfig) error {
	config := ResolveConfig(cfg)
	logger := core.InitLogger("greetform", config.DebugLogs)

	handler, reloader := NewHandler(cfg.Env, config, logger)

	ln, err := listen("tcp", fmt.Sprintf(":%d", config.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", config.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("env", cfg.Env).Str("addr", ln.Addr().String()).Msg("server_start")
		fmt.Printf("✅ greetform running at http://localhost:%d\n", config.Port)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info().Msg("server_shutdown")
		if reloader != nil {
			reloader.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if reloader != nil {
		watcher := &core.Watcher{
			Dirs:     []string{config.RoutesDir, config.PublicDir, core.ComponentsDir(config)},
			OnChange: reloader.Notify,
			Logger:   logger,
		}
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	return g.Wait()
}

// ResolveConfig loads the config file named by cfg (or the default files) and
// applies the command-line overrides. A zero Port keeps the configured port.
func ResolveConfig(cfg RuntimeConfig) core.Config {
	var config core.Config
	if cfg.ConfigPath != "" {
		config = core.LoadConfig(cfg.ConfigPath)
	} else {
		config = core.LoadConfig()
	}
	config.CacheEnabled = cfg.EnableCache
	if cfg.Port > 0 {
		config.Port = cfg.Port
	}
	return config
}

// NewGreeter picks the actor the page talks to: a remote one when a backend
// URL is configured, otherwise the in-process reference backend.
func NewGreeter(config core.Config) greeter.Greeter {
	if config.BackendURL != "" {
		return greeter.NewRemote(config.BackendURL, &http.Client{Timeout: config.GreetTimeout})
	}
	return greeter.NewBackend(config.GreetFormat)
}

// NewHandler builds the full HTTP surface. In dev it also returns the live
// reloader the watcher should notify.
func NewHandler(env string, config core.Config, logger zerolog.Logger) (http.Handler, core.LiveReloaderInterface) {
	mux := http.NewServeMux()
	publicDir := config.PublicDir

	var reloader core.LiveReloaderInterface
	if env == "dev" {
		mux.Handle("/static/", http.StripPrefix("/static/", noStore(http.FileServer(http.Dir(publicDir)))))
		mux.Handle("/favicon.ico", noStore(fileHandler(filepath.Join(publicDir, "favicon.ico"))))

		reloader = core.NewLiveReloader()
		mux.HandleFunc(core.ReloadPath, reloader.Handler)
	} else {
		mux.Handle("/static/", makeStaticHandler(publicDir, filepath.Join(config.OutputDir, "static")))
		mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
			serveFileWithHeaders(w, r, filepath.Join(publicDir, "favicon.ico"), "public, max-age=31536000, immutable")
		})
	}

	router := core.NewRouter(config, core.RuntimeContext{
		Env:     env,
		Greeter: NewGreeter(config),
		Logger:  logger,
	})
	mux.Handle("/", router)

	return core.RequestLogger(logger, mux), reloader
}

func noStore(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		if strings.HasSuffix(r.URL.Path, ".wasm") {
			w.Header().Set("Content-Type", "application/wasm")
		}
		h.ServeHTTP(w, r)
	})
}

func fileHandler(path string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, path)
	})
}

func makeStaticHandler(publicDir, cacheStaticDir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/static/")
		if trimmed == "" || strings.Contains(trimmed, "..") {
			http.NotFound(w, r)
			return
		}

		cachedFile := filepath.Join(cacheStaticDir, trimmed)
		gzipFile := cachedFile + ".gz"
		immutable := "public, max-age=31536000, immutable"

		if core.AcceptsGzip(r) {
			if _, err := os.Stat(gzipFile); err == nil {
				w.Header().Set("Content-Type", detectMimeType(cachedFile))
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Set("Vary", "Accept-Encoding")
				serveFileWithHeaders(w, r, gzipFile, immutable)
				return
			}
		}

		if _, err := os.Stat(cachedFile); err == nil {
			serveFileWithHeaders(w, r, cachedFile, immutable)
			return
		}

		publicFile := filepath.Join(publicDir, trimmed)
		if _, err := os.Stat(publicFile); err == nil {
			serveFileWithHeaders(w, r, publicFile, immutable)
			return
		}

		http.NotFound(w, r)
	})
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, path, cacheControl string) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", detectMimeType(path))
	}
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, path)
}

func detectMimeType(path string) string {
	switch filepath.Ext(path) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".wasm":
		return "application/wasm"
	case ".html":
		return "text/html; charset=utf-8"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".ico":
		return "image/x-icon"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}
