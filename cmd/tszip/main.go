// Command tszip compresses and decompresses tree sequence table files.
package main

import (
	"os"

	"github.com/tszip-db/tszip/internal/cli"
)

func main() {
	os.Exit(cli.Main("tszip", os.Args[1:], false))
}
