package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const showHeaderLimit = 20

func newCmd_Show() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show a source's metadata and its first games",
		Description: "Prints the source entry for <label> plus the header tags of its first 20 games.",
		ArgsUsage:   "<label>",
		Action: func(c *cli.Context) error {
			label := c.Args().First()
			if label == "" {
				return cli.Exit("usage: show <label>", exitUsage)
			}
			s, err := openStore(c)
			if err != nil {
				return err
			}

			hashes := s.Sources.ByLabel(label)
			if len(hashes) == 0 {
				return cli.Exit(fmt.Sprintf("not found: no source labelled %q", label), exitNotFound)
			}
			for _, h := range hashes {
				entry, _ := s.Sources.Get(h)
				fmt.Printf("source %s\n  label:       %s\n  imported_at: %s\n  byte_size:   %d\n  sha256:      %s\n\n",
					h.String(), entry.Label, entry.ImportedAt, entry.ByteSize, entry.SourceSHA256)
			}

			want := make(map[string]bool, len(hashes))
			for _, h := range hashes {
				want[h.String()] = true
			}

			shown := 0
			for _, id := range s.Registry.GameIDs() {
				if shown >= showHeaderLimit {
					break
				}
				entry, ok := s.Registry.Get(id)
				if !ok || !want[entry.SourceHash.String()] {
					continue
				}
				game, err := s.ReconstructPGN(id)
				if err != nil {
					return exitErr(err)
				}
				fmt.Printf("%s: %s vs %s, %s (%s)\n", id, game.Headers["White"], game.Headers["Black"], game.Headers["Date"], game.Headers["Result"])
				shown++
			}
			return nil
		},
	}
}
