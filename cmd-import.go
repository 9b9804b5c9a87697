package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/positional/ccamc/ccamc"
	"github.com/positional/ccamc/pgn"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

var flagLabel = &cli.StringFlag{
	Name:     "label",
	Usage:    "source label this PGN file is imported under",
	Required: true,
}

var flagQuiet = &cli.BoolFlag{
	Name:  "quiet",
	Usage: "suppress the progress bar",
}

func newCmd_Import() *cli.Command {
	return &cli.Command{
		Name:        "import",
		Usage:       "Ingest a PGN file as a labelled source",
		Description: "Parses <pgn> game-by-game and ingests each one, deduplicating against the existing pack. Saves the store every 100 games and once more at the end.",
		ArgsUsage:   "<pgn>",
		Flags:       []cli.Flag{flagLabel, flagQuiet},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("usage: import <pgn> --label L", exitUsage)
			}
			label := c.String(flagLabel.Name)

			raw, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("fatal: %v", err), exitFatal)
			}

			s, err := openStore(c)
			if err != nil {
				return err
			}

			sourceSHA256Hex := ccamc.Sha256Hex(raw)
			total := countGames(raw)

			var bar *progressbar.ProgressBar
			if !c.Bool(flagQuiet.Name) {
				bar = progressbar.Default(int64(total), fmt.Sprintf("importing %s", label))
			}

			reader := &pgnReader{sc: pgn.NewScanner(bytes.NewReader(raw))}
			result, err := s.IngestSource(label, int64(len(raw)), sourceSHA256Hex, reader, total, func(done, total int) {
				if bar != nil {
					bar.Set(done)
				}
			})
			if err != nil {
				return exitErr(err)
			}
			if err := s.Save(); err != nil {
				return exitErr(err)
			}
			fmt.Printf("ingested %d games (%d skipped) from %s as %q\n", result.GamesIngested, result.GamesSkipped, path, label)
			return nil
		},
	}
}

// pgnReader adapts *pgn.Scanner to ccamc.GameReader; *pgn.Game's methods
// make it a ccamc.PGNGame, but Scanner.Next returns *pgn.Game, and Go
// requires the exact ccamc.PGNGame return type to satisfy GameReader.
type pgnReader struct {
	sc *pgn.Scanner
}

func (r *pgnReader) Next() (ccamc.PGNGame, error) {
	g, err := r.sc.Next()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// countGames gives the progress bar a denominator: the number of Event tag
// lines in the raw file, which is 1:1 with the number of games in any
// PGN file that has header blocks (every game does).
func countGames(raw []byte) int {
	return strings.Count(string(raw), "[Event ")
}

