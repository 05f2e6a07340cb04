// Command go6502 loads a raw 6502 binary, runs it on a harness.Harness, and
// drives a bubbletea tui against it.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"gone/harness"
	"gone/loader"
	"gone/mem"
	"gone/tui"
)

func main() {
	app := cli.NewApp()
	app.Name = "go6502"
	app.Usage = "run a 6502 program under an interactive debugger"
	app.ArgsUsage = "<program>"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "load-address",
			Value: "0400",
			Usage: "hex address to load the program at and point the reset vector to",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "go6502:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.NewExitError("a program path is required", 1)
	}

	addr, err := parseAddress(ctx.String("load-address"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	bus := &mem.Bus{}
	if _, err := loader.Load(bus, path, addr); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	h := harness.New(bus)
	h.Reset()

	stop := make(chan struct{})
	go h.Run(stop)
	defer close(stop)

	if err := tui.Run(h.Commands()); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	return nil
}

func parseAddress(s string) (uint16, error) {
	var addr uint16
	_, err := fmt.Sscanf(s, "%x", &addr)
	if err != nil {
		return 0, fmt.Errorf("invalid load address %q: %w", s, err)
	}
	return addr, nil
}
