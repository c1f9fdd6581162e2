// README: rentquote CLI entry point; prices rentals offline from a catalog file.
package main

import (
	"os"

	"storefront/cmd/rentquote/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
