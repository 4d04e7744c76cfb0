package main

import (
	"os"

	"github.com/thenoetrevino/pasosync/cmd"
	"github.com/thenoetrevino/pasosync/internal/cli"
)

func main() {
	os.Exit(cli.ExitCodeFor(cmd.Execute()))
}
