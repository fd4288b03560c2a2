// Command boxwalk lays out HTML documents and renders them to PNG.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	root, a := newRootCmd()
	if err := root.Execute(); err != nil {
		if a.logger != nil {
			a.logger.Error("command failed", zap.Error(err))
			_ = a.logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
