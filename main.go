package main

import (
	"os"

	"site_uitest/presentation/cli"
)

func main() {
	os.Exit(cli.Execute())
}
