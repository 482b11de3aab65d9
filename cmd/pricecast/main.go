package main

import (
	"os"

	"github.com/YuminosukeSato/pricecast/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
