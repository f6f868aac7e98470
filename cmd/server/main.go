// Package main implements the clinic-api command: the HTTP server for
// tenant-scoped student records plus its database maintenance commands.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
