package cmd

import (
	"fmt"
	"runtime"
)

// Version is injected at build time via ldflags.
var Version = "dev"

// runVersion prints version information.
func runVersion() {
	fmt.Printf("miru %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
