// Command schemata compiles class declarations and loads fixtures into a
// store through the value sanitizer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/schemata/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.GetExitCode(err))
}
