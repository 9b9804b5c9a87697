package main

import (
	"fmt"

	"github.com/positional/ccamc/ccamc"
	"github.com/urfave/cli/v2"
)

func newCmd_Init() *cli.Command {
	return &cli.Command{
		Name:        "init",
		Usage:       "Create a new empty store",
		Description: "Creates a .positional/ workspace at [dir] (default: current directory) holding an empty pack, string pool, metadata store, and registry.",
		ArgsUsage:   "[dir]",
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				dir = "."
			}
			s, err := ccamc.Init(dir)
			if err != nil {
				return exitErr(err)
			}
			if err := s.Save(); err != nil {
				return exitErr(err)
			}
			fmt.Printf("initialised store at %s\n", s.DataDir())
			return nil
		},
	}
}
