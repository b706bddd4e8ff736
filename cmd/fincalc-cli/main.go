package main

import (
	"errors"
	"fmt"
	"os"

	"fincalc/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own failures; anything else is a usage error from cobra.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
