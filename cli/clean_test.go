package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCleanCommand_CleansOutputDir(t *testing.T) {
	configPath, cfg := newTestSite(t)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		t.Fatal(err)
	}
	dummyFile := filepath.Join(cfg.OutputDir, "index.html")
	if err := os.WriteFile(dummyFile, []byte("cached!"), 0644); err != nil {
		t.Fatal(err)
	}

	output := captureOutput(func() {
		if err := runCommand(CleanCommand, "--config", configPath, "clean"); err != nil {
			t.Errorf("clean command failed: %v", err)
		}
	})

	if _, err := os.Stat(dummyFile); !os.IsNotExist(err) {
		t.Errorf("expected file to be deleted, but still exists: %s", dummyFile)
	}
	if !strings.Contains(output, "✅ Done.") {
		t.Errorf("expected done message, got: %s", output)
	}
}

func TestCleanCommand_CleansSubroute(t *testing.T) {
	configPath, cfg := newTestSite(t)

	subDir := filepath.Join(cfg.OutputDir, "people", "ada")
	other := filepath.Join(cfg.OutputDir, "index")
	for _, dir := range []string{subDir, other} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	captureOutput(func() {
		if err := runCommand(CleanCommand, "--config", configPath, "clean", "/people/ada"); err != nil {
			t.Errorf("clean command failed: %v", err)
		}
	})

	if _, err := os.Stat(subDir); !os.IsNotExist(err) {
		t.Errorf("expected subroute directory to be deleted, but it exists")
	}
	if _, err := os.Stat(other); err != nil {
		t.Errorf("expected other cached routes to survive: %v", err)
	}
}

func TestCleanCommand_NothingToClean(t *testing.T) {
	configPath, _ := newTestSite(t)

	var err error
	output := captureOutput(func() {
		err = runCommand(CleanCommand, "--config", configPath, "clean")
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(output, "Nothing to clean") {
		t.Errorf("expected nothing-to-clean message, got: %s", output)
	}
}

func TestCleanCommand_RejectsTraversal(t *testing.T) {
	configPath, _ := newTestSite(t)

	var err error
	captureOutput(func() {
		err = runCommand(CleanCommand, "--config", configPath, "clean", "../etc")
	})

	if err == nil || !strings.Contains(err.Error(), "invalid route") {
		t.Errorf("expected invalid route error, got %v", err)
	}
}

func TestCleanCommand_NotADirectory(t *testing.T) {
	configPath, cfg := newTestSite(t)

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, "stray"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var err error
	captureOutput(func() {
		err = runCommand(CleanCommand, "--config", configPath, "clean", "stray")
	})

	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("expected not-a-directory error, got %v", err)
	}
}
