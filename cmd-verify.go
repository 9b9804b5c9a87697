package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func newCmd_Verify() *cli.Command {
	return &cli.Command{
		Name:        "verify",
		Usage:       "Check chain reachability and hash integrity",
		Description: "Walks every registered game's blob chain, re-derives blob/index hashes, and confirms metadata references resolve. Reports issues without modifying the store.",
		Flags:       []cli.Flag{flagQuiet},
		Action: func(c *cli.Context) error {
			s, err := openStore(c)
			if err != nil {
				return err
			}
			report := s.Verify()
			quiet := c.Bool(flagQuiet.Name)
			if !quiet {
				fmt.Printf("checked %d games\n", report.GamesChecked)
			}
			for _, issue := range report.Issues {
				fmt.Println(issue.String())
			}
			if !report.OK() {
				return cli.Exit(fmt.Sprintf("integrity: %d issue(s) found", len(report.Issues)), exitIntegrity)
			}
			if !quiet {
				fmt.Println("ok")
			}
			return nil
		},
	}
}
