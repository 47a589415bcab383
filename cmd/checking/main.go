// checking uploads documents to a comparison service and saves the
// returned comparison page.
package main

import (
	"os"

	"github.com/kyaw-zaya123/checking/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
