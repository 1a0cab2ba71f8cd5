package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-barry/greetform/core"
	"github.com/go-barry/greetform/form"
	"github.com/urfave/cli/v2"
)

// sampleStates are rendered for every route so a template that only breaks
// after a submission is still caught.
var sampleStates = []form.PageState{
	{},
	{Name: "Ada", Greeting: "Hello, Ada!"},
	{Name: "Ada", Pending: true},
	{Name: "Ada", Error: "greeter: call: unreachable"},
}

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Validate routes, components, and layouts",
	Action: func(c *cli.Context) error {
		config := loadConfig(c)
		var failed bool

		filepath.Walk(config.RoutesDir, func(path string, info os.FileInfo, err error) error {
			if err != nil || !info.IsDir() {
				return nil
			}

			htmlPath := filepath.Join(path, "index.html")
			if _, err := os.Stat(htmlPath); err != nil {
				return nil
			}

			rel, _ := filepath.Rel(config.RoutesDir, path)
			if rel == "." {
				rel = "/"
			} else {
				rel = "/" + filepath.ToSlash(rel)
			}

			page, err := core.ParsePage(config, "dev", htmlPath)
			if err != nil {
				failed = true
				fmt.Printf("❌ %s → parse error: %v\n", rel, err)
				return nil
			}

			for _, state := range sampleStates {
				data := core.PageData{PageState: state, Params: map[string]string{}, Env: "dev", Dev: true, ReloadPath: core.ReloadPath}
				if _, err := page.Execute(data); err != nil {
					failed = true
					fmt.Printf("❌ %s → exec error: %v\n", rel, err)
					return nil
				}
			}

			fmt.Printf("✅ %s\n", rel)
			return nil
		})

		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		fmt.Println("✅ All templates validated successfully.")
		return nil
	},
}
