// Shrink - validate and minify HTML, CSS, JSON, JavaScript and JSX
package main

import (
	"os"

	"github.com/HartBrook/shrink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
