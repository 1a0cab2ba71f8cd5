package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-barry/greetform/core"
	"github.com/urfave/cli/v2"
)

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print project structure and cache summary",
	Action: func(c *cli.Context) error {
		config := loadConfig(c)

		backend := config.BackendURL
		if backend == "" {
			backend = "local (" + config.GreetFormat + ")"
			if config.GreetFormat == "" {
				backend = "local"
			}
		}

		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🔁 Cache Enabled:", config.CacheEnabled)
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Println("🔁 Debug Logs Enabled:", config.DebugLogs)
		fmt.Println("🎯 Greeter Backend:", backend)
		fmt.Println("⏱️  Greet Timeout:", config.GreetTimeout)
		fmt.Println()

		componentCount := 0
		filepath.Walk(core.ComponentsDir(config), func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && strings.HasSuffix(path, ".html") {
				componentCount++
			}
			return nil
		})

		routeCount := 0
		filepath.Walk(config.RoutesDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && info.IsDir() {
				if _, err := os.Stat(filepath.Join(path, "index.html")); err == nil {
					routeCount++
				}
			}
			return nil
		})

		cacheCount := 0
		filepath.Walk(config.OutputDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() && strings.HasSuffix(path, ".html") {
				cacheCount++
			}
			return nil
		})

		_, wasmErr := os.Stat(filepath.Join(config.PublicDir, "greet.wasm"))

		fmt.Println("🗂️  Routes Found:", routeCount)
		fmt.Println("📦 Components Found:", componentCount)
		fmt.Println("💾 Cached Pages:", cacheCount)
		fmt.Println("🧩 WebAssembly Handler Built:", wasmErr == nil)

		return nil
	},
}
