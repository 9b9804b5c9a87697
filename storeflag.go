package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/positional/ccamc/ccamc"
	"github.com/positional/ccamc/chessboard"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

// FlagStoreDir is the global -C flag changing the working directory used
// for store discovery (spec §6).
var FlagStoreDir = &cli.StringFlag{
	Name:    "C",
	Aliases: []string{"dir"},
	Usage:   "change to `PATH` before discovering the store",
	Value:   ".",
}

// openStore discovers and loads the store reachable from the -C flag's
// path, exiting the process with code 3 if none is found.
func openStore(c *cli.Context) (*ccamc.Store, error) {
	dir := c.String(FlagStoreDir.Name)
	s, err := ccamc.Open(dir)
	if err != nil {
		if ccamc.Kind(err) == ccamc.KindNotFound {
			return nil, cli.Exit(fmt.Sprintf("fatal: not a repository: %s", dir), exitNotRepository)
		}
		return nil, err
	}
	s.Logger = klogLogger{}
	s.NewBoard = newBoard
	loadDefaultEcoCatalog(s)
	return s, nil
}

func newBoard() ccamc.Board {
	return chessboard.New()
}

// loadDefaultEcoCatalog auto-discovers an eco.tsv catalog at the workspace
// root and loads it into s.Eco. Its absence is not an error: pre-seeding is
// an optimization, not a correctness requirement.
func loadDefaultEcoCatalog(s *ccamc.Store) {
	path := ccamc.DefaultEcoCatalogPath(s.Root())
	if _, err := os.Stat(path); err != nil {
		return
	}
	cat, err := ccamc.LoadEcoCatalog(path, s.NewBoard, s.Logger)
	if err != nil {
		klog.Warningf("eco catalog at %s: %v", path, err)
		return
	}
	s.Eco = cat
}

// Exit codes per spec §6: 0 success, 1 generic fatal, 2 usage, 3
// not-a-repository, 4 not-found, 5 integrity error, 130 user interrupt.
const (
	exitOK            = 0
	exitFatal         = 1
	exitUsage         = 2
	exitNotRepository = 3
	exitNotFound      = 4
	exitIntegrity     = 5
	exitInterrupted   = 130
)

// exitCodeForError maps a ccamc error to the CLI's exit code, so every
// command can `return exitErr(err)` uniformly.
func exitCodeForError(err error) int {
	switch ccamc.Kind(err) {
	case ccamc.KindUsage:
		return exitUsage
	case ccamc.KindNotFound:
		return exitNotFound
	case ccamc.KindIntegrity:
		return exitIntegrity
	default:
		return exitFatal
	}
}

// exitErr converts err into a cli.ExitCoder carrying the right exit code
// and a "fatal: " prefixed message, unless it is already an ExitCoder.
func exitErr(err error) error {
	if err == nil {
		return nil
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return err
	}
	return cli.Exit(fmt.Sprintf("fatal: %v", err), exitCodeForError(err))
}

// klogLogger adapts k8s.io/klog/v2 to ccamc.Logger so the engine's
// corrupt-input warnings flow through the same logging sink as the rest of
// this binary.
type klogLogger struct{}

func (klogLogger) Warnf(format string, args ...any) {
	klog.Warningf(format, args...)
}
