package main

import (
	"os"

	"github.com/nhle/research-cli/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
