package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

var buildExecCommand = exec.Command
var osWriteFileFunc = os.WriteFile
var osMkdirAllFunc = os.MkdirAll
var osReadFileFunc = os.ReadFile

const wasmPackage = "./cmd/greetwasm"

func getGoModuleName() (string, error) {
	data, err := os.ReadFile("go.mod")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), nil
		}
	}
	return "", fmt.Errorf("module path not found in go.mod")
}

func goRoot() (string, error) {
	cmd := buildExecCommand("go", "env", "GOROOT")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("failed to resolve GOROOT: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// copyWasmExec copies the JS glue matching the toolchain that built the
// module. Go 1.24 moved it from misc/wasm to lib/wasm.
func copyWasmExec(root, publicDir string) error {
	candidates := []string{
		filepath.Join(root, "lib", "wasm", "wasm_exec.js"),
		filepath.Join(root, "misc", "wasm", "wasm_exec.js"),
	}
	for _, src := range candidates {
		data, err := osReadFileFunc(src)
		if err != nil {
			continue
		}
		return osWriteFileFunc(filepath.Join(publicDir, "wasm_exec.js"), data, 0644)
	}
	return fmt.Errorf("wasm_exec.js not found under %s", root)
}

var BuildCommand = &cli.Command{
	Name:  "build",
	Usage: "Compile the form handler to WebAssembly into the public directory",
	Action: func(c *cli.Context) error {
		modName, err := getGoModuleName()
		if err != nil {
			return fmt.Errorf("failed to determine module name from go.mod: %w", err)
		}

		config := loadConfig(c)
		out := filepath.Join(config.PublicDir, "greet.wasm")

		if err := osMkdirAllFunc(config.PublicDir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create public directory: %w", err)
		}

		cmd := buildExecCommand("go", "build", "-o", out, wasmPackage)
		cmd.Dir = "."
		cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		fmt.Println("📦 Building module:", modName)
		fmt.Println("🔧 Building:", out)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("failed to build wasm handler: %w", err)
		}

		root, err := goRoot()
		if err != nil {
			return err
		}
		if err := copyWasmExec(root, config.PublicDir); err != nil {
			return fmt.Errorf("failed to copy wasm_exec.js: %w", err)
		}

		fmt.Println("✅ WebAssembly handler built successfully.")
		return nil
	},
}
