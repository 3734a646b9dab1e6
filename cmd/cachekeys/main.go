// Command cachekeys lists, reads, writes and invalidates keys across the
// stores described in a YAML configuration file.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
