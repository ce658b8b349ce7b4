package config

import (
	"fmt"
	"os"
)

// Exitf writes a formatted fatal message to stderr and exits with status 1.
// Command entry points use it so every fatal path reports the same way.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
