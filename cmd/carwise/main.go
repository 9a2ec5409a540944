// Command carwise runs the carwise HTTP service and offers one-shot vehicle
// evaluations from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
