package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"slices"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
)

func newCmd_Version() *cli.Command {
	return &cli.Command{
		Name:        "version",
		Usage:       "Print version information of this binary.",
		Description: "Print version information of this binary.",
		Before: func(c *cli.Context) error {
			return nil
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print version info as a single JSON line"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("json") {
				printVersionAsJson()
				return nil
			}
			printVersion()
			return nil
		},
	}
}

// reportedBuildSettings is the subset of debug.BuildInfo.Settings worth
// surfacing to someone debugging a reconstruction mismatch across builds of
// this binary: toolchain/target identity and the exact VCS revision a pack
// was produced or read by, nothing about build cache paths or flags.
var reportedBuildSettings = []string{
	"-compiler",
	"GOARCH",
	"GOOS",
	"GOAMD64",
	"vcs",
	"vcs.revision",
	"vcs.time",
	"vcs.modified",
}

// collectBuildSettings reads the running binary's build info and returns
// only the keys in reportedBuildSettings, as an unordered key -> value map.
func collectBuildSettings() map[string]string {
	out := make(map[string]string)
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	for _, setting := range info.Settings {
		if slices.Contains(reportedBuildSettings, setting.Key) {
			out[setting.Key] = setting.Value
		}
	}
	return out
}

func printVersion() {
	fmt.Println("CCAMC CLI")
	fmt.Printf("Tag/Branch: %s\n", GitTag)
	fmt.Printf("Commit: %s\n", GitCommit)
	settings := collectBuildSettings()
	if len(settings) > 0 {
		fmt.Printf("More info:\n")
		for _, key := range reportedBuildSettings {
			if value, ok := settings[key]; ok {
				fmt.Printf("  %s: %s\n", key, value)
			}
		}
	}
	fmt.Println("Date: ", time.Now().Format(time.RFC3339))
	fmt.Println("Go version:", runtime.Version())
	fmt.Println("Num CPU:", runtime.NumCPU())
	fmt.Println("Session:", GetSessionID())
}

func printVersionAsJson() {
	info := map[string]string{
		"tag":        GitTag,
		"commit":     GitCommit,
		"date":       time.Now().Format(time.RFC3339),
		"go_version": runtime.Version(),
		"num_cpu":    fmt.Sprintf("%d", runtime.NumCPU()),
		"session_id": SessionID,
	}
	for key, value := range collectBuildSettings() {
		info[key] = value
	}
	asJson, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(info)
	if err != nil {
		panic(fmt.Errorf("error while marshaling version info to JSON: %w", err))
	}
	fmt.Println(":CCAMC_VERSION_BEGIN:" + string(asJson) + ":CCAMC_VERSION_END:")
}

var (
	GitCommit string
	GitTag    string
	SessionID string
)

func init() {
	SessionID = uuid.New().String() + ":" + time.Now().Format("20060102T150405")
}

func GetSessionID() string {
	return SessionID
}
