// Command trademind is a trading journal with performance analytics.
package main

import (
	"fmt"
	"os"

	"trademind/internal/cli"
)

func main() {
	app := &cli.App{}
	if err := cli.Execute(app); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
