package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInfoCommand_CountsStarterSite(t *testing.T) {
	configPath, cfg := newTestSite(t)
	t.Setenv("GREETFORM_BACKEND_URL", "")

	if err := os.MkdirAll(filepath.Join(cfg.OutputDir, "index"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, "index", "index.html"), []byte("<html></html>"), 0644); err != nil {
		t.Fatal(err)
	}

	var err error
	output := captureOutput(func() {
		err = runCommand(InfoCommand, "--config", configPath, "info")
	})
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}

	checks := []string{
		"📁 Output Directory: " + cfg.OutputDir,
		"🎯 Greeter Backend: local",
		"🗂️  Routes Found: 1",
		"📦 Components Found: 2",
		"💾 Cached Pages: 1",
		"🧩 WebAssembly Handler Built: false",
	}
	for _, want := range checks {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestInfoCommand_ShowsRemoteBackend(t *testing.T) {
	configPath, _ := newTestSite(t)
	t.Setenv("GREETFORM_BACKEND_URL", "http://greeter.internal:8080")

	output := captureOutput(func() {
		_ = runCommand(InfoCommand, "--config", configPath, "info")
	})

	if !strings.Contains(output, "🎯 Greeter Backend: http://greeter.internal:8080") {
		t.Errorf("expected remote backend in output:\n%s", output)
	}
}
