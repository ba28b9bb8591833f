//go:build !tinygo

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "facepanel is firmware; build it with tinygo:")
	fmt.Fprintln(os.Stderr, "  tinygo flash -target=esp32s3 ./cmd/facepanel")
	os.Exit(1)
}
