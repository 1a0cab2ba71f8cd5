package cli

import (
	"github.com/go-barry/greetform"
	"github.com/urfave/cli/v2"
)

var startServer = greetform.Start

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to greetform.config.yml or greetform.config.toml",
	EnvVars: []string{"GREETFORM_CONFIG"},
}

func portFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "port",
		Usage: "port to listen on (default: port in config, then 8080)",
	}
}

// flagPort is zero unless --port was given, so the config file's port applies.
func flagPort(c *cli.Context) int {
	if !c.IsSet("port") {
		return 0
	}
	return c.Int("port")
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start greetform in dev mode (no caching, live reload)",
	Flags: []cli.Flag{portFlag()},
	Action: func(c *cli.Context) error {
		cfg := greetform.RuntimeConfig{
			Env:         "dev",
			EnableCache: false,
			Port:        flagPort(c),
			ConfigPath:  c.String("config"),
		}
		return startServer(c.Context, cfg)
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start greetform in production mode (caching on by default)",
	Flags: []cli.Flag{portFlag()},
	Action: func(c *cli.Context) error {
		cfg := greetform.RuntimeConfig{
			Env:         "prod",
			EnableCache: true,
			Port:        flagPort(c),
			ConfigPath:  c.String("config"),
		}
		return startServer(c.Context, cfg)
	},
}
