// Command tabq answers plain-English questions about local CSV files.
//
//	tabq ask --file roaming.csv "total charge by partner"
//	tabq ask --file jan.csv --file feb.csv --output json "how many rows"
//	tabq profile --file roaming.csv
//	tabq load --project-name roaming --file jan.csv --file feb.csv
package main

import (
	"os"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
