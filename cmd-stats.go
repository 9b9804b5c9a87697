package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/positional/ccamc/ccamc"
	"github.com/urfave/cli/v2"
)

func newCmd_Stats() *cli.Command {
	return &cli.Command{
		Name:        "stats",
		Usage:       "Print store size and dedup statistics",
		Description: "Prints per-sub-store counts and sizes, plus the blob dedup ratio (games ingested vs. distinct blobs).",
		Action: func(c *cli.Context) error {
			s, err := openStore(c)
			if err != nil {
				return err
			}

			blobCount := len(s.Pack.InsertionOrder())
			blobBytes := blobCount * ccamc.BlobSize
			gameCount := s.Registry.Len()

			fmt.Printf("games:        %s\n", humanize.Comma(int64(gameCount)))
			fmt.Printf("blobs:        %s (%s)\n", humanize.Comma(int64(blobCount)), humanize.Bytes(uint64(blobBytes)))
			fmt.Printf("strings:      %s\n", humanize.Comma(int64(s.Strings.Len())))
			fmt.Printf("metadata:     %s\n", humanize.Comma(int64(s.Metadata.Len())))
			fmt.Printf("sources:      %s\n", humanize.Comma(int64(s.Sources.Len())))
			if s.Eco != nil {
				fmt.Printf("eco entries:  %s\n", humanize.Comma(int64(len(s.Eco.Entries()))))
			}
			if gameCount > 0 {
				fmt.Printf("dedup ratio:  %.2f blobs/game\n", float64(blobCount)/float64(gameCount))
			}
			return nil
		},
	}
}
