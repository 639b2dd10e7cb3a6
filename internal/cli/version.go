package cli

import (
	"fmt"
	"io"
)

// Version is overridden at build time.
var Version = "v0.0.0"

func printVersion(stdout io.Writer) {
	fmt.Fprintf(stdout, "fmp4info %s\n", Version)
}
