package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-barry/greetform/web"
	"github.com/urfave/cli/v2"
)

const starterConfig = `outputDir: ./cache
routesDir: web/routes
publicDir: web/public
cache: true
greetFormat: "Hello, %s!"
greetTimeout: 10s
`

var InitCommand = &cli.Command{
	Name:      "init",
	Usage:     "Create a new greeting site from the default starter",
	ArgsUsage: "[directory (optional)]",
	Action: func(c *cli.Context) error {
		targetDir, _ := os.Getwd()
		if c.Args().Len() > 0 {
			targetDir = c.Args().Get(0)
		}
		fmt.Println("🚀 Creating greetform site in:", targetDir)

		if err := copyEmbeddedDir(web.Starter, ".", filepath.Join(targetDir, "web")); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		configPath := filepath.Join(targetDir, "greetform.config.yml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := os.WriteFile(configPath, []byte(starterConfig), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
		}

		fmt.Println("✅ Project created successfully.")
		fmt.Println("▶  Run: greetform dev")
		return nil
	},
}

func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string) error {
	return fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, os.ModePerm)
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), os.ModePerm); err != nil {
			return err
		}

		return os.WriteFile(targetPath, data, 0644)
	})
}
