package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-barry/greetform/core"
	"github.com/go-barry/greetform/web"
	"github.com/urfave/cli/v2"
)

func captureOutput(f func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	f()

	w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

// newTestSite lays the starter site out in a temp dir and writes a config
// file pointing at it with absolute paths.
func newTestSite(t *testing.T) (string, core.Config) {
	t.Helper()
	root := t.TempDir()

	if err := copyEmbeddedDir(web.Starter, ".", filepath.Join(root, "web")); err != nil {
		t.Fatalf("failed to copy starter: %v", err)
	}

	cfg := core.Config{
		OutputDir: filepath.Join(root, "cache"),
		RoutesDir: filepath.Join(root, "web", "routes"),
		PublicDir: filepath.Join(root, "web", "public"),
	}
	configPath := filepath.Join(root, "greetform.config.yml")
	body := fmt.Sprintf("outputDir: %s\nroutesDir: %s\npublicDir: %s\ngreetTimeout: 2s\n",
		cfg.OutputDir, cfg.RoutesDir, cfg.PublicDir)
	if err := os.WriteFile(configPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath, cfg
}

func runCommand(cmd *cli.Command, args ...string) error {
	app := &cli.App{
		Flags:          []cli.Flag{ConfigFlag},
		Commands:       []*cli.Command{cmd},
		ExitErrHandler: func(c *cli.Context, err error) {},
	}
	return app.Run(append([]string{"greetform"}, args...))
}
