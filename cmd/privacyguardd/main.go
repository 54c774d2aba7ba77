// Command privacyguardd runs privacyguard's operator-facing subcommands
// (serve, check, replay, doctor, reset, version).
package main

import "github.com/OpenBMB/privacyguard/internal/cli"

func main() {
	cli.Execute()
}
