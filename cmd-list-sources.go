package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func newCmd_List() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List store contents",
		Subcommands: []*cli.Command{
			newCmd_ListSources(),
		},
	}
}

func newCmd_ListSources() *cli.Command {
	return &cli.Command{
		Name:        "sources",
		Usage:       "List imported sources",
		Description: "Prints a table of every source entry with its game count and byte size.",
		Action: func(c *cli.Context) error {
			s, err := openStore(c)
			if err != nil {
				return err
			}

			counts := make(map[string]int)
			for _, id := range s.Registry.GameIDs() {
				entry, ok := s.Registry.Get(id)
				if !ok {
					continue
				}
				src, ok := s.Sources.Get(entry.SourceHash)
				if !ok {
					continue
				}
				counts[src.Label]++
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tGAMES\tSIZE\tIMPORTED\tHASH")
			for _, id := range s.Sources.Hashes() {
				entry, _ := s.Sources.Get(id)
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					entry.Label, counts[entry.Label], humanize.Bytes(uint64(entry.ByteSize)), entry.ImportedAt, id.String())
			}
			return tw.Flush()
		},
	}
}
