package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

var gitCommitSHA = ""

func main() {
	// set up a context that is canceled when a command is interrupted
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// set up a signal handler to cancel the context
	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-interrupt:
			fmt.Println()
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}

		// Allow any further SIGTERM or SIGINT to kill process
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "ccamc",
		Version:     gitCommitSHA,
		Description: "Content-addressable storage for chess games: ingest PGN into a deduplicated move-chain store and reconstruct it bit-perfectly.",
		Before: func(c *cli.Context) error {
			return nil
		},
		Flags: []cli.Flag{
			FlagStoreDir,
		},
		Action: nil,
		Commands: []*cli.Command{
			newCmd_Init(),
			newCmd_Import(),
			newCmd_Export(),
			newCmd_List(),
			newCmd_Show(),
			newCmd_Stats(),
			newCmd_Verify(),
			newCmd_Version(),
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.RunContext(ctx, os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok && exitErr.ExitCode() == exitInterrupted {
			os.Exit(exitInterrupted)
		}
		klog.Error(err)
		if exitErr, ok := err.(cli.ExitCoder); ok {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(exitFatal)
	}
}
