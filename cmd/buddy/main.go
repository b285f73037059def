// Command buddy is a terminal client for PayMyBuddy. Every invocation runs as
// one tab; tabs share their session through the Redis backed storage, so a
// login in one terminal shows up in a running "buddy watch".
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := App().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "buddy:", err)
		os.Exit(1)
	}
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "buddy",
		Usage:   "PayMyBuddy from the terminal",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Before:  loadEnvFiles,
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			balanceCommand(),
			sendCommand(),
			watchCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api",
			Usage:   "API base URL",
			EnvVars: []string{"API_URL"},
			Value:   "http://127.0.0.1:8081/",
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "Redis server shared by the tabs",
			EnvVars: []string{"REDIS_URL"},
			Value:   "redis://localhost:6379/0",
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "Key prefix of the shared storage (default from STORAGE_KEY_PREFIX)",
		},
		&cli.StringSliceFlag{
			Name:  "env-file",
			Usage: "dotenv files read before the flags are resolved",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug output to stderr",
		},
	}
}
