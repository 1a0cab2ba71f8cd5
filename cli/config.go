package cli

import (
	"github.com/go-barry/greetform/core"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) core.Config {
	if c != nil {
		if path := c.String("config"); path != "" {
			return core.LoadConfig(path)
		}
	}
	return core.LoadConfig()
}
