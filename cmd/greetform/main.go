package main

import (
	"log"
	"os"

	greetcli "github.com/go-barry/greetform/cli"
	clilib "github.com/urfave/cli/v2"
)

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "greetform",
		Usage: "Serve a greeting form backed by a local or remote greeter",
		Flags: []clilib.Flag{greetcli.ConfigFlag},
		Commands: []*clilib.Command{
			greetcli.InitCommand,
			greetcli.DevCommand,
			greetcli.ProdCommand,
			greetcli.BuildCommand,
			greetcli.CleanCommand,
			greetcli.CheckCommand,
			greetcli.InfoCommand,
			greetcli.GreetCommand,
		},
	}
	return app.Run(args)
}

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}
