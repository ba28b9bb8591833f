//go:build !tinygo

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "buzzer is firmware; build it with tinygo:")
	fmt.Fprintln(os.Stderr, "  tinygo flash -target=pico ./cmd/buzzer")
	os.Exit(1)
}
