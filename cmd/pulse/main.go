package main

import (
	"os"

	"github.com/grvsharma1810/pulse/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.DefaultConfig(), os.Args[1:]))
}
