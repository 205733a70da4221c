// Command hospitalsync mirrors hospital datasets from the CMS provider-data
// catalog into a local directory, fetching only what changed since the last
// run.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
