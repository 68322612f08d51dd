// Command mailctl manages signed-in mailbox accounts and debugs tenant routing.
package main

import (
	"os"

	"mail-hub/internal/cli"
)

// Set at build time via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	}))
}
