package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-barry/greetform"
	"github.com/go-barry/greetform/core"
	"github.com/go-barry/greetform/form"
	"github.com/go-barry/greetform/greeter"
	"github.com/urfave/cli/v2"
)

var greetOutput io.Writer = os.Stdout

// terminalView renders the form on a terminal. The button is the "waiting"
// line printed while a call is outstanding.
type terminalView struct {
	out  io.Writer
	name string
}

func (v *terminalView) Name() string {
	return v.name
}

func (v *terminalView) SetPending(pending bool) {
	if pending {
		fmt.Fprintf(v.out, "⏳ Greeting %q...\n", v.name)
	}
}

func (v *terminalView) SetGreeting(text string) {
	fmt.Fprintln(v.out, text)
}

func (v *terminalView) SetError(err error) {
	if err != nil {
		fmt.Fprintln(v.out, "❌", err)
	}
}

var GreetCommand = &cli.Command{
	Name:      "greet",
	Usage:     "Submit a name to the greeter and print the greeting",
	ArgsUsage: "[name]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "name to greet (may be empty)",
		},
		&cli.StringFlag{
			Name:    "backend",
			Usage:   "base URL of a running greetform server",
			EnvVars: []string{core.EnvBackendURL},
		},
	},
	Action: func(c *cli.Context) error {
		config := loadConfig(c)

		name := c.String("name")
		if !c.IsSet("name") && c.Args().Len() > 0 {
			name = strings.Join(c.Args().Slice(), " ")
		}

		var g greeter.Greeter
		if backend := c.String("backend"); backend != "" {
			g = greeter.NewRemote(backend, nil)
		} else {
			g = greetform.NewGreeter(config)
		}

		view := &terminalView{out: greetOutput, name: name}
		h := form.New(g, view,
			form.WithTimeout(config.GreetTimeout),
			form.WithLogger(core.NewLogger(os.Stderr, "greetform", config.DebugLogs)),
		)

		ctx := c.Context
		if ctx == nil {
			ctx = context.Background()
		}
		if _, err := h.Handle(ctx, form.NoEvent); err != nil {
			return cli.Exit("greeting failed", 1)
		}
		return nil
	},
}
