package main

import (
	"os"

	"github.com/compozy/bomkit/cli"
	"github.com/compozy/bomkit/cli/helpers"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(helpers.ExitCode(err))
	}
}
