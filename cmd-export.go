package main

import (
	"fmt"
	"os"

	"github.com/positional/ccamc/ccamc"
	"github.com/positional/ccamc/pgn"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

func newCmd_Export() *cli.Command {
	return &cli.Command{
		Name:        "export",
		Usage:       "Emit PGN text for every game imported under a source label",
		Description: "Reconstructs every game whose registry entry carries a matching source label and writes them to stdout as PGN text.",
		ArgsUsage:   "<label>",
		Flags:       []cli.Flag{flagQuiet},
		Action: func(c *cli.Context) error {
			label := c.Args().First()
			if label == "" {
				return cli.Exit("usage: export <label>", exitUsage)
			}
			s, err := openStore(c)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if !c.Bool(flagQuiet.Name) {
				bar = progressbar.Default(-1, fmt.Sprintf("exporting %s", label))
			}

			n, err := s.ExportSource(label, func(g *ccamc.ReconstructedGame) error {
				return pgn.WriteGame(os.Stdout, g)
			}, func(done, total int) {
				if bar != nil {
					bar.ChangeMax(total)
					bar.Set(done)
				}
			})
			if err != nil {
				return exitErr(err)
			}
			fmt.Fprintf(os.Stderr, "exported %d games\n", n)
			return nil
		},
	}
}
