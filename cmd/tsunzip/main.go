// Command tsunzip decompresses tree sequence archives. It is the
// decompression-only counterpart of tszip.
package main

import (
	"os"

	"github.com/tszip-db/tszip/internal/cli"
)

func main() {
	os.Exit(cli.Main("tsunzip", os.Args[1:], true))
}
